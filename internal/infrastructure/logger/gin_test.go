package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// findRequestLog returns the "HTTP Request" entry among recorded logs
func findRequestLog(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	logs := recorded.All()
	for i := range logs {
		if logs[i].Message == "HTTP Request" {
			return &logs[i]
		}
	}
	t.Fatal("HTTP Request log should exist")
	return nil
}

func fieldMap(entry *observer.LoggedEntry) map[string]zapcore.Field {
	fields := make(map[string]zapcore.Field, len(entry.Context))
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	return fields
}

func TestGinMiddleware(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	router.Use(GinMiddleware(zapLogger))
	router.GET("/receipts/:folio", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"folio": c.Param("folio")})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/receipts/F-2025-0001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	entry := findRequestLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := fieldMap(entry)
	assert.Equal(t, "GET", fields["method"].String)
	assert.Equal(t, "/receipts/F-2025-0001", fields["path"].String)
	require.Contains(t, fields, "status")
	assert.Equal(t, int64(http.StatusOK), fields["status"].Integer)
}

func TestGinMiddleware_WithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	// Simulates the RequestID middleware running first
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zapLogger))
	router.GET("/receipts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/receipts", nil)
	router.ServeHTTP(w, req)

	entry := findRequestLog(t, recorded)
	fields := fieldMap(entry)
	require.Contains(t, fields, "request_id")
	assert.Equal(t, "req-123", fields["request_id"].String)
}

func TestGinMiddleware_QueryString(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	router.Use(GinMiddleware(zapLogger))
	router.GET("/cashcuts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/cashcuts?from=2024-03-01&to=2024-03-31", nil)
	router.ServeHTTP(w, req)

	entry := findRequestLog(t, recorded)
	fields := fieldMap(entry)
	require.Contains(t, fields, "query")
	assert.Equal(t, "from=2024-03-01&to=2024-03-31", fields["query"].String)
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel zapcore.Level
	}{
		{"2xx logs info", http.StatusOK, zapcore.InfoLevel},
		{"4xx logs warn", http.StatusNotFound, zapcore.WarnLevel},
		{"5xx logs error", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			zapLogger := zap.New(core)

			router := gin.New()
			router.Use(GinMiddleware(zapLogger))
			router.GET("/verification/verify", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/verification/verify", nil)
			router.ServeHTTP(w, req)

			entry := findRequestLog(t, recorded)
			assert.Equal(t, tt.expectedLevel, entry.Level)
		})
	}
}

func TestGinMiddleware_StoresRequestLogger(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	zapLogger := zap.New(core)

	var handlerLogger *zap.Logger

	router := gin.New()
	router.Use(GinMiddleware(zapLogger))
	router.GET("/receipts", func(c *gin.Context) {
		handlerLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/receipts", nil)
	router.ServeHTTP(w, req)

	// The handler sees the request-scoped logger, not a nop
	assert.NotNil(t, handlerLogger)
	assert.NotEqual(t, zap.NewNop(), handlerLogger)
}

func TestGetGinLogger_FallsBackToNop(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	logger := GetGinLogger(c)
	assert.NotNil(t, logger)
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	router.Use(Recovery(zapLogger))
	router.GET("/receipts", func(c *gin.Context) {
		panic("cache backend gone")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/receipts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "Panic recovered", logs[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)

	fields := fieldMap(&logs[0])
	assert.Equal(t, "/receipts", fields["path"].String)
}

func TestRecovery_NoPanic(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	router.Use(Recovery(zapLogger))
	router.GET("/receipts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/receipts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorded.All())
}

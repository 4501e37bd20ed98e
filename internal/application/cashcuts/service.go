package cashcuts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tesoreria/backend/internal/domain/cashcut"
	"github.com/tesoreria/backend/internal/domain/shared"
	"github.com/tesoreria/backend/internal/domain/shared/valueobject"
	"github.com/tesoreria/backend/internal/infrastructure/rendering"
)

// ErrSuperseded is returned when a newer cash-cut request from the same
// session arrived while this one was still running. The caller should use
// the newer result instead.
var ErrSuperseded = shared.NewDomainError("SUPERSEDED", "Cash cut superseded by a newer request")

// Service runs cash-cut aggregations. Each session holds at most one
// in-flight aggregation: a new request cancels the previous one and a
// cancelled request never publishes a stale report.
type Service struct {
	source      cashcut.EntrySource
	docRenderer *rendering.DocumentRenderer
	pdfRenderer rendering.PDFRenderer
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	inflight map[string]*inflightRun
}

type inflightRun struct {
	cancel context.CancelFunc
	seq    uint64
}

// NewService creates a new cash-cut Service
func NewService(
	source cashcut.EntrySource,
	docRenderer *rendering.DocumentRenderer,
	pdfRenderer rendering.PDFRenderer,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:      source,
		docRenderer: docRenderer,
		pdfRenderer: pdfRenderer,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		inflight:    make(map[string]*inflightRun),
	}
}

// GenerateReport fetches the entries for the requested range and scope and
// aggregates them into a cash-cut report.
func (s *Service) GenerateReport(ctx context.Context, sessionID string, role cashcut.RoleContext, req GenerateReportRequest) (*ReportResponse, error) {
	report, err := s.buildReport(ctx, sessionID, role, req)
	if err != nil {
		return nil, err
	}
	return toReportResponse(report), nil
}

// Document renders the cash-cut report as a downloadable PDF. Equal reports
// render to equal bytes and the same filename.
func (s *Service) Document(ctx context.Context, sessionID string, role cashcut.RoleContext, req GenerateReportRequest) (*DocumentResponse, error) {
	report, err := s.buildReport(ctx, sessionID, role, req)
	if err != nil {
		return nil, err
	}

	doc, err := s.docRenderer.RenderCashCut(report)
	if err != nil {
		return nil, fmt.Errorf("failed to render cash-cut document: %w", err)
	}

	result, err := s.pdfRenderer.Render(ctx, &rendering.RenderRequest{
		HTML:      string(doc.HTML),
		PaperSize: rendering.PaperSizeLetter,
		Title:     doc.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return &DocumentResponse{
		Filename: doc.Filename,
		PDFData:  result.PDFData,
	}, nil
}

func (s *Service) buildReport(ctx context.Context, sessionID string, role cashcut.RoleContext, req GenerateReportRequest) (*cashcut.Report, error) {
	dr, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, err
	}

	var declared *valueobject.Money
	if raw := strings.TrimSpace(req.DeclaredAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, shared.NewValidationError("declared_amount must be a decimal number")
		}
		m := valueobject.NewMoneyMXN(amount)
		declared = &m
	}

	// Resolve the branch up front so authorization failures surface
	// before any query runs.
	scope, err := cashcut.ResolveScope(role, req.BranchID)
	if err != nil {
		return nil, err
	}

	runCtx, seq := s.begin(ctx, sessionID)
	defer s.finish(sessionID, seq)

	entries, err := s.source.FetchEntries(runCtx, scope, dr)
	if err != nil {
		if runCtx.Err() != nil && !s.isCurrent(sessionID, seq) {
			return nil, ErrSuperseded
		}
		return nil, fmt.Errorf("failed to fetch cash-cut entries: %w", err)
	}

	report, err := cashcut.Aggregate(cashcut.AggregateInput{
		Entries:        entries,
		Range:          dr,
		BranchScope:    req.BranchID,
		Role:           role,
		Query:          req.Query,
		DeclaredAmount: declared,
		GeneratedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}

	// A report computed for a superseded request is discarded, never
	// returned, even when the fetch happened to finish in time.
	if !s.isCurrent(sessionID, seq) {
		return nil, ErrSuperseded
	}

	s.logger.Info("cash cut generated",
		zap.String("range", dr.String()),
		zap.String("branch_scope", scope),
		zap.Int("entries", len(report.Entries)))

	return report, nil
}

// begin registers a new run for the session, cancelling any previous one.
func (s *Service) begin(ctx context.Context, sessionID string) (context.Context, uint64) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var seq uint64 = 1
	if prev, ok := s.inflight[sessionID]; ok {
		prev.cancel()
		seq = prev.seq + 1
	}
	s.inflight[sessionID] = &inflightRun{cancel: cancel, seq: seq}
	return runCtx, seq
}

// finish releases the run's slot unless a newer run already replaced it.
func (s *Service) finish(sessionID string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run, ok := s.inflight[sessionID]; ok && run.seq == seq {
		run.cancel()
		delete(s.inflight, sessionID)
	}
}

func (s *Service) isCurrent(sessionID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.inflight[sessionID]
	return ok && run.seq == seq
}

func parseDateRange(from, to string) (valueobject.DateRange, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return valueobject.DateRange{}, shared.NewValidationError("from must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return valueobject.DateRange{}, shared.NewValidationError("to must be YYYY-MM-DD")
	}
	dr, err := valueobject.NewDateRange(start, end)
	if err != nil {
		return valueobject.DateRange{}, shared.NewValidationError(err.Error())
	}
	return dr, nil
}

package dashboard

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"sleep-dashboard/models"
	"sleep-dashboard/utils"
)

// Server serves a rendered dashboard over HTTP.
type Server struct {
	dash    *Dashboard
	summary *models.Summary
	logger  *utils.Logger
}

func NewServer(dash *Dashboard, summary *models.Summary, logger *utils.Logger) *Server {
	return &Server{dash: dash, summary: summary, logger: logger}
}

// Routes returns the dashboard router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/charts/{chartID}", s.handleChart)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", s.handleSummary)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("[server] %s %s → %d (%d bytes, %s) id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, s.dash.Page)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	page, err := s.dash.Chart(chi.URLParam(r, "chartID"))
	if errors.Is(err, ErrUnknownChart) {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, page)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type healthResponse struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", Rows: s.dash.Rows})
}

type statsResponse struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"q25"`
	Median *float64 `json:"median"`
	Q75    *float64 `json:"q75"`
	Max    *float64 `json:"max"`
}

type correlationResponse struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

type summaryResponse struct {
	Rows        int                  `json:"rows"`
	Stats       []statsResponse      `json:"stats"`
	Correlation *correlationResponse `json:"correlation,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, newSummaryResponse(s.summary))
}

func newSummaryResponse(summary *models.Summary) summaryResponse {
	resp := summaryResponse{Stats: []statsResponse{}}
	if summary == nil {
		return resp
	}
	resp.Rows = summary.Rows

	for _, st := range summary.Stats {
		resp.Stats = append(resp.Stats, statsResponse{
			Column: st.Column,
			Count:  st.Count,
			Mean:   jsonFloat(st.Mean),
			Std:    jsonFloat(st.Std),
			Min:    jsonFloat(st.Min),
			Q25:    jsonFloat(st.Q25),
			Median: jsonFloat(st.Median),
			Q75:    jsonFloat(st.Q75),
			Max:    jsonFloat(st.Max),
		})
	}

	if m := summary.Correlation; m != nil {
		corr := &correlationResponse{Columns: m.Columns, Values: make([][]*float64, len(m.Values))}
		for i, row := range m.Values {
			corr.Values[i] = make([]*float64, len(row))
			for j, v := range row {
				corr.Values[i][j] = jsonFloat(v)
			}
		}
		resp.Correlation = corr
	}
	return resp
}

// jsonFloat maps NaN and ±Inf to null.
func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpServer := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info("[server] Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errCh <- httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("[server] Dashboard listening on http://%s", ln.Addr())
	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-errCh
}

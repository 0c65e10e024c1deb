package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dnldd/pricealerts/chart"
	"github.com/dnldd/pricealerts/shared"
	"github.com/dnldd/pricealerts/widget"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	// defaultWidth is the default render width.
	defaultWidth = 300
	// defaultHeight is the default render height.
	defaultHeight = 120
	// maxDimension is the largest accepted render dimension.
	maxDimension = 4096
	// defaultPoints is the default number of price points rendered.
	defaultPoints = 120
	// svgContentType is the content type of rendered svg documents.
	svgContentType = "image/svg+xml"
)

// ServerConfig represents the configuration of the http server.
type ServerConfig struct {
	// Address is the listening address.
	Address string
	// Store is the price store the server reads from.
	Store shared.PriceStorer
	// Style is the card style used for rendering.
	Style widget.Style
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Server represents the price alerts http server.
type Server struct {
	cfg    *ServerConfig
	router *mux.Router
	httpd  *http.Server
}

// errorResponse represents a json error response.
type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

// assetResponse represents a json asset snapshot.
type assetResponse struct {
	Name           string  `json:"name"`
	Ticker         string  `json:"ticker"`
	Price          float64 `json:"price"`
	PercentChange  float64 `json:"percentChange"`
	FormattedPrice string  `json:"formattedPrice"`
	Sentiment      string  `json:"sentiment"`
}

// pointResponse represents a json normalized point.
type pointResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// chartResponse represents a json normalized chart.
type chartResponse struct {
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Stroke []pointResponse `json:"stroke"`
	Fill   []pointResponse `json:"fill"`
}

// NewServer initializes the http server.
func NewServer(cfg *ServerConfig) *Server {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/assets", s.handleAssets).Methods(http.MethodGet)
	s.router.HandleFunc("/assets/{ticker}/chart", s.handleChart).Methods(http.MethodGet)
	s.router.HandleFunc("/assets/{ticker}/card.svg", s.handleCard).Methods(http.MethodGet)
	s.router.HandleFunc("/assets/{ticker}/activity/{view}.svg", s.handleActivity).Methods(http.MethodGet)

	s.httpd = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: time.Second * 5,
	}

	return s
}

// Handler returns the server's http handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setResponse writes the provided value as a json response.
func (s *Server) setResponse(w http.ResponseWriter, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		s.cfg.Logger.Error().Msgf("encoding response: %v", err)
	}
}

// setErrorResponse writes the provided error as a json response.
func (s *Server) setErrorResponse(w http.ResponseWriter, statusCode int, errType string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encodeErr := json.NewEncoder(w).Encode(&errorResponse{Type: errType, Msg: err.Error()})
	if encodeErr != nil {
		s.cfg.Logger.Error().Msgf("encoding error response: %v", encodeErr)
	}
}

// setRenderError maps the provided render error to an error response.
func (s *Server) setRenderError(w http.ResponseWriter, err error) {
	var chartErr *shared.ChartError
	switch {
	case errors.As(err, &chartErr):
		s.setErrorResponse(w, http.StatusUnprocessableEntity, chartErr.Kind.String(), err)
	case errors.Is(err, shared.ErrNotFound):
		s.setErrorResponse(w, http.StatusNotFound, "not found", err)
	default:
		s.cfg.Logger.Error().Msgf("rendering: %v", err)
		s.setErrorResponse(w, http.StatusInternalServerError, "internal", err)
	}
}

// parseDimension parses a positive render dimension query parameter.
func parseDimension(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, raw)
	}
	if v > maxDimension {
		return 0, fmt.Errorf("%s cannot exceed %d", name, maxDimension)
	}

	return v, nil
}

// renderRequest represents the parsed parameters of a render request.
type renderRequest struct {
	ticker   string
	viewport shared.Viewport
	points   int
	style    widget.Style
}

// parseRenderRequest parses the common render request parameters.
func (s *Server) parseRenderRequest(r *http.Request) (*renderRequest, error) {
	width, err := parseDimension(r, "width", defaultWidth)
	if err != nil {
		return nil, err
	}
	height, err := parseDimension(r, "height", defaultHeight)
	if err != nil {
		return nil, err
	}

	points := defaultPoints
	if raw := r.URL.Query().Get("points"); raw != "" {
		points, err = strconv.Atoi(raw)
		if err != nil || points <= 0 {
			return nil, fmt.Errorf("points must be a positive integer, got %q", raw)
		}
	}

	style := s.cfg.Style
	if raw := r.URL.Query().Get("flat"); raw != "" {
		policy, ok := chart.ParseFlatPolicy(raw)
		if !ok {
			return nil, fmt.Errorf("unknown flat policy %q", raw)
		}
		style.FlatPolicy = policy
	}

	return &renderRequest{
		ticker:   strings.ToLower(mux.Vars(r)["ticker"]),
		viewport: shared.Viewport{Width: width, Height: height},
		points:   points,
		style:    style,
	}, nil
}

// fetchSeries returns the asset snapshot and price points of the requested asset.
func (s *Server) fetchSeries(ctx context.Context, req *renderRequest) (*shared.Asset, []shared.PricePoint, error) {
	asset, err := s.cfg.Store.FetchAsset(ctx, req.ticker)
	if err != nil {
		return nil, nil, err
	}

	points, err := s.cfg.Store.FetchPricePoints(ctx, req.ticker, req.points)
	if err != nil {
		return nil, nil, err
	}

	return asset, points, nil
}

// handleAssets lists the stored asset snapshots.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.cfg.Store.FetchAssets(r.Context())
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	resp := make([]assetResponse, 0, len(assets))
	for idx := range assets {
		asset := assets[idx]
		resp = append(resp, assetResponse{
			Name:           asset.Name,
			Ticker:         asset.Ticker,
			Price:          asset.CurrentPrice,
			PercentChange:  asset.PercentChange,
			FormattedPrice: asset.FormattedPrice(),
			Sentiment:      asset.FetchSentiment().String(),
		})
	}

	s.setResponse(w, resp)
}

// toPointResponses converts normalized points for json encoding.
func toPointResponses(pts []shared.NormalizedPoint) []pointResponse {
	resp := make([]pointResponse, len(pts))
	for idx := range pts {
		resp[idx] = pointResponse{X: pts[idx].X, Y: pts[idx].Y}
	}

	return resp
}

// handleChart returns the normalized chart of an asset.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.setErrorResponse(w, http.StatusBadRequest, "bad request", err)
		return
	}

	_, points, err := s.fetchSeries(r.Context(), req)
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	path, err := chart.Normalize(points, req.viewport, chart.WithFlatPolicy(req.style.FlatPolicy))
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	s.setResponse(w, &chartResponse{
		Width:  req.viewport.Width,
		Height: req.viewport.Height,
		Stroke: toPointResponses(path.Stroke),
		Fill:   toPointResponses(path.Fill),
	})
}

// writeSVG writes the provided svg document.
func (s *Server) writeSVG(w http.ResponseWriter, doc []byte) {
	w.Header().Set("Content-Type", svgContentType)
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(doc)
	if err != nil {
		s.cfg.Logger.Error().Msgf("writing svg: %v", err)
	}
}

// handleCard renders the price card of an asset.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.setErrorResponse(w, http.StatusBadRequest, "bad request", err)
		return
	}

	asset, points, err := s.fetchSeries(r.Context(), req)
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	card, err := widget.RenderCard(&widget.CardConfig{
		Asset:    *asset,
		Points:   points,
		Viewport: req.viewport,
		Style:    req.style,
	})
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	s.writeSVG(w, card.SVG())
}

// handleActivity renders a live activity presentation of an asset.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	view, err := widget.ParseView(mux.Vars(r)["view"])
	if err != nil {
		s.setErrorResponse(w, http.StatusNotFound, "not found", err)
		return
	}

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.setErrorResponse(w, http.StatusBadRequest, "bad request", err)
		return
	}

	asset, points, err := s.fetchSeries(r.Context(), req)
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	presentation, err := widget.RenderActivity(&widget.ActivityConfig{
		Attributes: widget.Attributes{
			AssetName:     asset.Name,
			AssetTicker:   asset.Ticker,
			Price:         asset.CurrentPrice,
			PercentChange: asset.PercentChange,
		},
		State:    widget.ContentState{Message: r.URL.Query().Get("message")},
		View:     view,
		Points:   points,
		Viewport: req.viewport,
		Style:    req.style,
	})
	if err != nil {
		s.setRenderError(w, err)
		return
	}

	s.writeSVG(w, presentation.SVG())
}

// Run serves http requests until the provided context is cancelled.
func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		err := s.httpd.Shutdown(shutdownCtx)
		if err != nil {
			s.cfg.Logger.Error().Msgf("shutting down http server: %v", err)
		}
	}()

	s.cfg.Logger.Info().Msgf("listening on %s", s.cfg.Address)
	err := s.httpd.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.cfg.Logger.Error().Msgf("serving http: %v", err)
	}
}

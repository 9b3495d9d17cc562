// Package api provides the REST API server for voicebridge
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/james-see/voicebridge/pkg/config"
	"github.com/james-see/voicebridge/pkg/midiexport"
	"github.com/james-see/voicebridge/pkg/pattern"
	"github.com/james-see/voicebridge/pkg/theory"
	"github.com/james-see/voicebridge/pkg/voicing"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title VoiceBridge API
// @version 1.0
// @description API for voicing chord patterns and exporting them as MIDI
// @host localhost:8080
// @BasePath /api/v1

// VoiceRequest is the body of the voicing and export endpoints. Empty fields
// fall back to the server configuration.
type VoiceRequest struct {
	Pattern    string `json:"pattern" binding:"required"`
	RangeLow   string `json:"range_low,omitempty"`
	RangeHigh  string `json:"range_high,omitempty"`
	Dictionary string `json:"dictionary,omitempty"`
	Picker     string `json:"picker,omitempty"`
	Cycles     int    `json:"cycles,omitempty"`
}

// SpanJSON is a time span in cycles, as exact fractions.
type SpanJSON struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// EventJSON is one voiced note.
type EventJSON struct {
	Whole *SpanJSON `json:"whole,omitempty"`
	Part  SpanJSON  `json:"part"`
	Note  string    `json:"note"`
	MIDI  int       `json:"midi"`
}

const maxCycles = 64

type server struct {
	cfg config.Config
	log zerolog.Logger
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg config.Config, log zerolog.Logger) *gin.Engine {
	s := &server{cfg: cfg, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/voicings", s.handleVoicings)
		v1.POST("/export/:format", s.handleExport)
		v1.GET("/dictionaries", listDictionaries)
		v1.GET("/formats", listFormats)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the configured port
func StartServer(cfg config.Config, log zerolog.Logger) error {
	log.Info().Int("port", cfg.Port).Msg("starting API server")
	return NewRouter(cfg, log).Run(fmt.Sprintf(":%d", cfg.Port))
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	})
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "voicebridge",
	})
}

// listDictionaries godoc
// @Summary List voicing dictionaries
// @Description Returns the registered dictionaries with their chord symbols, and the pickers
// @Tags info
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/dictionaries [get]
func listDictionaries(c *gin.Context) {
	dicts := map[string][]string{}
	for _, name := range voicing.DictionaryNames() {
		d, _ := voicing.LookupDictionary(name)
		dicts[name] = d.Symbols()
	}
	c.JSON(http.StatusOK, gin.H{
		"dictionaries": dicts,
		"pickers":      voicing.PickerNames(),
	})
}

// listFormats godoc
// @Summary List export formats
// @Description Returns the formats accepted by the export endpoint
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": midiexport.GetSupportedFormats(),
	})
}

// handleVoicings godoc
// @Summary Voice a chord pattern
// @Description Parses a mini-notation chord pattern and returns the voiced notes of the first cycles
// @Tags voicing
// @Accept json
// @Produce json
// @Param request body VoiceRequest true "Chord pattern and voicing settings"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/voicings [post]
func (s *server) handleVoicings(c *gin.Context) {
	voiced, cycles, ok := s.voice(c)
	if !ok {
		return
	}

	haps := voiced.QueryArc(pattern.Int(0), pattern.Int(int64(cycles)))
	events := make([]EventJSON, 0, len(haps))
	for _, h := range haps {
		n, ok := h.Value.(theory.Note)
		if !ok {
			continue
		}
		ev := EventJSON{Part: spanJSON(h.Part), Note: n.String(), MIDI: int(n)}
		if h.Whole != nil {
			w := spanJSON(*h.Whole)
			ev.Whole = &w
		}
		events = append(events, ev)
	}

	c.JSON(http.StatusOK, gin.H{
		"cycles": cycles,
		"events": events,
	})
}

// handleExport godoc
// @Summary Export a voiced chord pattern
// @Description Voices a chord pattern and returns it as a MIDI file or a text listing
// @Tags export
// @Accept json
// @Produce application/octet-stream
// @Param format path string true "Output format (midi, text)"
// @Param request body VoiceRequest true "Chord pattern and voicing settings"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/export/{format} [post]
func (s *server) handleExport(c *gin.Context) {
	format := midiexport.Format(c.Param("format"))
	var contentType, outputName string
	switch format {
	case midiexport.FormatMIDI:
		contentType, outputName = "audio/midi", "voicings.mid"
	case midiexport.FormatText:
		contentType, outputName = "text/plain; charset=utf-8", "voicings.txt"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format"})
		return
	}

	voiced, cycles, ok := s.voice(c)
	if !ok {
		return
	}

	exp := midiexport.New(cycles,
		midiexport.WithCPS(s.cfg.CPS),
		midiexport.WithTicksPerQuarter(s.cfg.TicksPerQuarter),
	)
	result, err := exp.Export(voiced, format)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}

// voice binds the request and builds the voiced pattern. On failure it has
// already written the error response.
func (s *server) voice(c *gin.Context) (*pattern.Pattern, int, bool) {
	var req VoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return nil, 0, false
	}

	cfg := s.cfg
	if req.RangeLow != "" {
		cfg.RangeLow = req.RangeLow
	}
	if req.RangeHigh != "" {
		cfg.RangeHigh = req.RangeHigh
	}
	if req.Dictionary != "" {
		cfg.Dictionary = req.Dictionary
	}
	if req.Picker != "" {
		cfg.Picker = req.Picker
	}
	cycles := req.Cycles
	if cycles == 0 {
		cycles = 1
	}
	if cycles < 0 || cycles > maxCycles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cycles must be between 1 and %d", maxCycles)})
		return nil, 0, false
	}

	src, err := pattern.Mini(req.Pattern)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}
	opts, err := cfg.VoicingOptions(s.log)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}
	return voicing.Voicings(src, opts...), cycles, true
}

func spanJSON(s pattern.TimeSpan) SpanJSON {
	return SpanJSON{Begin: s.Begin.String(), End: s.End.String()}
}

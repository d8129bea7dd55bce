// Package mcp exposes the simulator as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/internal/config"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/ports"
)

const spectraURI = "mrsim://spectra"

// DocumentArgs carries a simulation document to a tool.
type DocumentArgs struct {
	Document string `json:"document" jsonschema_description:"Simulation document with spin_systems, method and optional simulation and post_simulation sections"`
	Format   string `json:"format,omitempty" jsonschema_description:"yaml or json, defaults to yaml"`
	Key      string `json:"key,omitempty" jsonschema_description:"Store the spectrum under this key"`
}

// Peak is the most intense bin of a spectrum.
type Peak struct {
	Index     int       `json:"index"`
	Frequency []float64 `json:"frequency_hz"`
	Intensity float64   `json:"intensity"`
}

// SimulateResponse summarizes a run. The full spectrum is included.
type SimulateResponse struct {
	RunID    string                 `json:"run_id"`
	Pathways int                    `json:"pathways"`
	Faults   int                    `json:"faults"`
	Area     float64                `json:"area"`
	Peak     Peak                   `json:"peak"`
	Systems  []mrsim.SystemPathways `json:"systems"`
	Spectrum *domain.Spectrum       `json:"spectrum"`
}

// PathwaysResponse lists the pathways of every spin system.
type PathwaysResponse struct {
	Systems []mrsim.SystemPathways `json:"systems"`
}

// Server wraps the simulator and exposes it as an MCP server.
type Server struct {
	options   []mrsim.Option
	store     ports.SpectrumStore
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server. store may be nil.
func NewServer(store ports.SpectrumStore, opts ...mrsim.Option) *Server {
	s := &Server{
		options:   opts,
		store:     store,
		mcpServer: server.NewMCPServer("mrsim-mcp", strings.TrimSpace(mrsim.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	simulateTool := mcp.NewTool("simulate",
		mcp.WithDescription("Simulate the powder-averaged NMR spectrum of a simulation document."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Simulation document (YAML or JSON)")),
		mcp.WithString("format", mcp.Description("yaml or json, defaults to yaml")),
		mcp.WithString("key", mcp.Description("Store the spectrum under this key")),
		mcp.WithOutputSchema[SimulateResponse](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))

	pathwaysTool := mcp.NewTool("transition_pathways",
		mcp.WithDescription("Resolve the transition pathways each spin system contributes under the method, without simulating."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Simulation document (YAML or JSON)")),
		mcp.WithString("format", mcp.Description("yaml or json, defaults to yaml")),
		mcp.WithOutputSchema[PathwaysResponse](),
	)
	s.mcpServer.AddTool(pathwaysTool, mcp.NewStructuredToolHandler(s.handlePathways))
}

func (s *Server) load(args DocumentArgs) (*config.Document, *mrsim.Simulator, error) {
	format := config.FormatYAML
	if strings.EqualFold(args.Format, "json") {
		format = config.FormatJSON
	}
	doc, err := config.Parse([]byte(args.Document), format)
	if err != nil {
		return nil, nil, err
	}
	docOpts, err := doc.Settings.Options()
	if err != nil {
		return nil, nil, err
	}
	opts := append(append([]mrsim.Option{}, s.options...), docOpts...)
	if s.store != nil {
		opts = append(opts, mrsim.WithStore(s.store))
	}
	sim, err := mrsim.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return doc, sim, nil
}

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (SimulateResponse, error) {
	if args.Key != "" && s.store == nil {
		return SimulateResponse{}, errors.New("no spectrum store configured")
	}
	doc, sim, err := s.load(args)
	if err != nil {
		return SimulateResponse{}, fmt.Errorf("invalid document: %w", err)
	}
	req := doc.Simulation()
	req.Key = args.Key
	res, err := sim.Run(ctx, req)
	if err != nil {
		return SimulateResponse{}, fmt.Errorf("simulation failed: %w", err)
	}
	return SimulateResponse{
		RunID:    res.RunID,
		Pathways: res.Pathways(),
		Faults:   res.Faults,
		Area:     res.Spectrum.Sum(),
		Peak:     peakOf(res.Spectrum),
		Systems:  res.Systems,
		Spectrum: res.Spectrum,
	}, nil
}

func (s *Server) handlePathways(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (PathwaysResponse, error) {
	doc, sim, err := s.load(args)
	if err != nil {
		return PathwaysResponse{}, fmt.Errorf("invalid document: %w", err)
	}
	systems, err := sim.Transitions(ctx, doc.Method, doc.SpinSystems)
	if err != nil {
		return PathwaysResponse{}, fmt.Errorf("resolution failed: %w", err)
	}
	return PathwaysResponse{Systems: systems}, nil
}

func peakOf(s *domain.Spectrum) Peak {
	p := Peak{Index: -1}
	for i, v := range s.Data {
		if p.Index < 0 || v > p.Intensity {
			p.Index, p.Intensity = i, v
		}
	}
	if p.Index < 0 {
		return p
	}
	rest := p.Index
	strides := s.Strides()
	p.Frequency = make([]float64, len(s.Axes))
	for d, axis := range s.Axes {
		k := rest / strides[d]
		rest %= strides[d]
		p.Frequency[d] = axis.CoordinatesHz()[k]
	}
	return p
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(spectraURI, "Stored spectrum keys",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if s.store == nil {
			return nil, errors.New("no spectrum store configured")
		}
		keys, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list spectra: %w", err)
		}
		return jsonResource(spectraURI, keys)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(spectraURI+"/{key}", "Stored spectrum",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if s.store == nil {
			return nil, errors.New("no spectrum store configured")
		}
		key := strings.TrimPrefix(request.Params.URI, spectraURI+"/")
		spectrum, err := s.store.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		return jsonResource(request.Params.URI, spectrum)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

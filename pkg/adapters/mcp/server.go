package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/uiengineer"
	"github.com/aretw0/uiengineer/internal/logging"
	"github.com/aretw0/uiengineer/internal/runtime"
	"github.com/aretw0/uiengineer/internal/sanitize"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/fastui"
	"github.com/aretw0/uiengineer/pkg/ports"
	"github.com/aretw0/uiengineer/pkg/schema"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ResourcePrefix addresses stored trees, e.g. uiengineer://apps/todo-list.
const ResourcePrefix = "uiengineer://apps/"

// ComponentsURI addresses the catalogue of component variants.
const ComponentsURI = "uiengineer://components"

// ComponentSpec describes one component variant and its fields. Optional
// field types end in "?".
type ComponentSpec struct {
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields"`
}

// AppResponse is the result of the show and update tools.
type AppResponse struct {
	App        string             `json:"app" jsonschema_description:"The application identifier"`
	Tree       string             `json:"tree" jsonschema_description:"Structural dump of the component tree"`
	Components []fastui.Component `json:"components" jsonschema_description:"The lowered FastUI components"`
}

// ListResponse is the result of list_apps.
type ListResponse struct {
	Apps []string `json:"apps" jsonschema_description:"Identifiers of the stored applications"`
}

// AppService is the part of *app.Service exposed as tools.
type AppService interface {
	Show(ctx context.Context, appID, action string) (domain.Tree, error)
	Update(ctx context.Context, appID, instruction string) (domain.Tree, error)
	Lower(ctx context.Context, appID string, tree domain.Tree) ([]fastui.Component, error)
	Delete(ctx context.Context, appID string) error
	List(ctx context.Context) ([]string, error)
	Store() ports.StateStore
}

// Server exposes the app service as an MCP Server.
type Server struct {
	service   AppService
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance. A nil logger discards.
func NewServer(service AppService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service:   service,
		logger:    logger,
		mcpServer: server.NewMCPServer("uiengineer-mcp", strings.TrimSpace(uiengineer.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	showTool := mcp.NewTool("show_app",
		mcp.WithDescription("Show an application, generating it on first use. With an action, the application is updated as if the user performed it."),
		mcp.WithString("app", mcp.Required(), mcp.Description("Application identifier, e.g. todo-list, or a navigation URL taken from a component, e.g. /todo-list?action=add%20item")),
		mcp.WithString("action", mcp.Description("Description of what the user did (optional, overrides the URL's action)")),
		mcp.WithOutputSchema[AppResponse](),
	)
	s.mcpServer.AddTool(showTool, mcp.NewStructuredToolHandler(s.handleShow))

	updateTool := mcp.NewTool("update_app",
		mcp.WithDescription("Change an existing application following an instruction."),
		mcp.WithString("app", mcp.Required(), mcp.Description("Application identifier")),
		mcp.WithString("instruction", mcp.Required(), mcp.Description("What to change")),
		mcp.WithOutputSchema[AppResponse](),
	)
	s.mcpServer.AddTool(updateTool, mcp.NewStructuredToolHandler(s.handleUpdate))

	listTool := mcp.NewTool("list_apps",
		mcp.WithDescription("List stored applications."),
		mcp.WithOutputSchema[ListResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("delete_app",
		mcp.WithDescription("Delete a stored application."),
		mcp.WithString("app", mcp.Required(), mcp.Description("Application identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		appID := request.GetString("app", "")
		if err := s.service.Delete(ctx, appID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return mcp.NewToolResultText("deleted " + appID), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleShow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AppResponse, error) {
	appID, _ := args["app"].(string)
	action, _ := args["action"].(string)

	if strings.HasPrefix(appID, "/") {
		target, urlAction, err := runtime.ParseAction(appID)
		if err != nil {
			return AppResponse{}, fmt.Errorf("show failed: %w: %w", domain.ErrInvalidAppID, err)
		}
		appID = target
		if action == "" {
			action = urlAction
		}
	}

	clean, err := sanitize.Input(action)
	if err != nil {
		s.logger.Warn("MCP show_app: action rejected", "err", err, "size", len(action))
		return AppResponse{}, fmt.Errorf("action rejected: %w", err)
	}

	tree, err := s.service.Show(ctx, appID, clean)
	if err != nil {
		return AppResponse{}, fmt.Errorf("show failed: %w", err)
	}
	return s.respond(ctx, appID, tree)
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AppResponse, error) {
	appID, _ := args["app"].(string)
	instruction, _ := args["instruction"].(string)

	clean, err := sanitize.Input(instruction)
	if err != nil {
		s.logger.Warn("MCP update_app: instruction rejected", "err", err, "size", len(instruction))
		return AppResponse{}, fmt.Errorf("instruction rejected: %w", err)
	}

	tree, err := s.service.Update(ctx, appID, clean)
	if err != nil {
		return AppResponse{}, fmt.Errorf("update failed: %w", err)
	}
	return s.respond(ctx, appID, tree)
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ListResponse, error) {
	ids, err := s.service.List(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ListResponse{Apps: ids}, nil
}

func (s *Server) respond(ctx context.Context, appID string, tree domain.Tree) (AppResponse, error) {
	components, err := s.service.Lower(ctx, appID, tree)
	if err != nil {
		return AppResponse{}, err
	}
	if components == nil {
		components = []fastui.Component{}
	}
	return AppResponse{App: appID, Tree: domain.Repr(tree), Components: components}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: uiengineer://apps/{app}
	template := mcp.NewResourceTemplate(ResourcePrefix+"{app}", "Stored component tree",
		mcp.WithTemplateDescription("Canonical JSON of an application's component tree"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.mcpServer.AddResourceTemplate(template, s.readApp)

	// EXPOSE: uiengineer://components
	s.mcpServer.AddResource(mcp.NewResource(ComponentsURI, "Component catalogue",
		mcp.WithResourceDescription("Component variants and their fields, as accepted in generated trees"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(Components())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ComponentsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// Components lists every component variant with the type of each field.
func Components() []ComponentSpec {
	specs := make([]ComponentSpec, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		fields := map[string]string{}
		if sch, ok := schema.VariantSchema(kind); ok {
			for _, name := range sch.Fields() {
				fields[name] = sch[name].Name()
			}
		}
		specs = append(specs, ComponentSpec{Type: string(kind), Fields: fields})
	}
	return specs
}

// readApp never generates: it only reads what is stored.
func (s *Server) readApp(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	appID := strings.TrimPrefix(uri, ResourcePrefix)
	if appID == uri {
		return nil, fmt.Errorf("unexpected resource %q", uri)
	}
	if err := domain.ValidateAppID(appID); err != nil {
		return nil, err
	}

	tree, err := s.service.Store().Load(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", appID, err)
	}
	data, err := domain.MarshalTree(tree)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

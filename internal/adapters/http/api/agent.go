package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

const agentPrefix = "api/pubg/agent/"

// AgentHandler proxies the mission agent endpoints: chat, state and tools.
type AgentHandler struct {
	fwd *forwarder

	availableTools, chatHistory, chatSend, getState, patchState route
	listTools, createTool, updateTool, deleteTool                route
}

// newAgentHandler creates the handler.
func newAgentHandler(fwd *forwarder) *AgentHandler {
	return &AgentHandler{
		fwd: fwd,
		availableTools: route{
			endpoint: "available_tools", method: http.MethodGet, resource: agentPrefix + "available-tools",
			teamScoped: true, fallback: "Failed to fetch available tools",
		},
		chatHistory: route{
			endpoint: "chat_history", method: http.MethodGet, resource: agentPrefix + "chat",
			teamScoped: true, fallback: "Failed to fetch chat history",
		},
		chatSend: route{
			endpoint: "chat_send", method: http.MethodPost, resource: agentPrefix + "chat",
			teamScoped: true, schema: chatSchema, fallback: "Failed to send message",
		},
		getState: route{
			endpoint: "get_state", method: http.MethodGet, resource: agentPrefix + "state",
			teamScoped: true, fallback: "Failed to fetch agent state",
		},
		patchState: route{
			endpoint: "patch_state", method: http.MethodPatch, resource: agentPrefix + "state",
			teamScoped: true, schema: stateSchema, fallback: "Failed to update agent state",
		},
		listTools: route{
			endpoint: "list_tools", method: http.MethodGet, resource: agentPrefix + "tool",
			teamScoped: true, fallback: "Failed to fetch team tools",
		},
		createTool: route{
			endpoint: "create_tool", method: http.MethodPost, resource: agentPrefix + "tool",
			teamScoped: true, schema: toolSchema, fallback: "Failed to create tool",
			status: http.StatusCreated,
		},
		updateTool: route{
			endpoint: "update_tool", method: http.MethodPatch, resource: agentPrefix + "tool",
			teamScoped: true, schema: toolSchema, fallback: "Failed to update tool",
		},
		deleteTool: route{
			endpoint: "delete_tool", method: http.MethodDelete,
			resourceFn: func(r *http.Request) string {
				name := chi.URLParam(r, "name")
				if unescaped, err := url.PathUnescape(name); err == nil {
					name = unescaped
				}
				return agentPrefix + "tool/" + url.PathEscape(name)
			},
			teamScoped: true, fallback: "Failed to delete tool",
			status: http.StatusNoContent, noContent: true,
		},
	}
}

// HandleAvailableTools handles GET /api/pubg/agent/available-tools.
func (h *AgentHandler) HandleAvailableTools(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.availableTools)
}

// HandleChatHistory handles GET /api/pubg/agent/chat.
func (h *AgentHandler) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.chatHistory)
}

// HandleChatSend handles POST /api/pubg/agent/chat.
func (h *AgentHandler) HandleChatSend(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.chatSend)
}

// HandleGetState handles GET /api/pubg/agent/state.
func (h *AgentHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.getState)
}

// HandlePatchState handles PATCH /api/pubg/agent/state.
func (h *AgentHandler) HandlePatchState(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.patchState)
}

// HandleListTools handles GET /api/pubg/agent/tool.
func (h *AgentHandler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.listTools)
}

// HandleCreateTool handles POST /api/pubg/agent/tool.
func (h *AgentHandler) HandleCreateTool(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.createTool)
}

// HandleUpdateTool handles PATCH /api/pubg/agent/tool.
func (h *AgentHandler) HandleUpdateTool(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.updateTool)
}

// HandleDeleteTool handles DELETE /api/pubg/agent/tool/{name}.
func (h *AgentHandler) HandleDeleteTool(w http.ResponseWriter, r *http.Request) {
	h.fwd.serve(w, r, h.deleteTool)
}

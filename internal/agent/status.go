package agent

import (
	"context"
	"strconv"
	"time"
)

// Status is a point-in-time snapshot of system health.
type Status struct {
	Timestamp          time.Time `json:"timestamp"`
	LLMAvailable       bool      `json:"llm_available"`
	LLMModel           string    `json:"llm_model"`
	KnowledgeDocuments int       `json:"knowledge_base_documents"`
	PendingEscalations int       `json:"pending_escalations"`
}

// ComponentCheck is the result of probing one component.
type ComponentCheck struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ConnectivityReport covers every component the agent depends on.
type ConnectivityReport struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Components map[string]ComponentCheck `json:"components"`
}

// Status reports system health. Probe failures degrade the snapshot rather
// than failing it.
func (a *Agent) Status(ctx context.Context) Status {
	st := Status{
		Timestamp:          time.Now().UTC(),
		LLMModel:           a.provider.Model(),
		KnowledgeDocuments: a.kb.Count(),
	}
	st.LLMAvailable = a.provider.Healthy(ctx) == nil

	if pending, err := a.escalation.Pending(ctx); err == nil {
		st.PendingEscalations = len(pending)
	}
	return st
}

// TestConnectivity probes each component and reports per-component results.
func (a *Agent) TestConnectivity(ctx context.Context) ConnectivityReport {
	report := ConnectivityReport{
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]ComponentCheck),
	}

	if err := a.provider.Healthy(ctx); err != nil {
		report.Components["llm"] = ComponentCheck{Status: "unavailable", Error: err.Error()}
	} else {
		report.Components["llm"] = ComponentCheck{Status: "available", Detail: a.provider.Model()}
	}

	report.Components["knowledge_base"] = ComponentCheck{
		Status: "loaded",
		Detail: strconv.Itoa(a.kb.Count()) + " documents",
	}

	if pending, err := a.escalation.Pending(ctx); err != nil {
		report.Components["escalation"] = ComponentCheck{Status: "error", Error: err.Error()}
	} else {
		report.Components["escalation"] = ComponentCheck{Status: "operational", Detail: strconv.Itoa(len(pending)) + " pending tickets"}
	}

	return report
}

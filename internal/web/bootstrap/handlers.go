package bootstrap

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pipelinekit/stagegen/internal/buildinfo"
	"github.com/pipelinekit/stagegen/internal/compiler/descriptor"
	"github.com/pipelinekit/stagegen/internal/output"
	"github.com/pipelinekit/stagegen/internal/state"
	"github.com/pipelinekit/stagegen/internal/web/auth"
	"github.com/pipelinekit/stagegen/internal/web/cache"
	"github.com/pipelinekit/stagegen/internal/web/router"
	"github.com/pipelinekit/stagegen/internal/web/stream"
)

// keepAliveInterval is the idle time after which an event stream gets a comment line
const keepAliveInterval = 15 * time.Second

// SystemInfo is the public description of the instance
type SystemInfo struct {
	ComponentID   string              `json:"componentId"`
	BaseHTTPURL   string              `json:"baseHttpUrl"`
	Build         buildinfo.BuildInfo `json:"build"`
	StreamClients int                 `json:"streamClients"`
}

// StateChange is the body of a state change request. Name and revision
// default to those of the current record.
type StateChange struct {
	Name     string `json:"name"`
	Revision string `json:"revision"`
	State    string `json:"state"`
	Message  string `json:"message"`
}

func (t *Task) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	router.WriteJSON(w, http.StatusOK, SystemInfo{
		ComponentID:   t.ComponentID(),
		BaseHTTPURL:   t.runtime.BaseHTTPURL,
		Build:         t.build,
		StreamClients: t.stream.Clients(),
	})
}

func (t *Task) handleRegistration(w http.ResponseWriter, r *http.Request) {
	router.WriteJSON(w, http.StatusOK, t.RegistrationAttributes())
}

func (t *Task) handleStages(w http.ResponseWriter, r *http.Request) {
	data, err := t.manifests.Read(r.Context(), "", descriptor.ManifestName)
	if errors.Is(err, output.ErrNotFound) {
		router.WriteError(w, r, http.StatusNotFound, "MANIFEST_NOT_FOUND", "No stage manifest has been generated")
		return
	}
	if err != nil {
		t.logger.Error("failed to read manifest", zap.Error(err))
		router.WriteError(w, r, http.StatusInternalServerError, "MANIFEST_UNAVAILABLE", "The stage manifest could not be read")
		return
	}

	stages, err := descriptor.ParseManifest(data)
	if err != nil {
		t.logger.Error("failed to parse manifest", zap.Error(err))
		router.WriteError(w, r, http.StatusInternalServerError, "MANIFEST_INVALID", "The stage manifest is not valid")
		return
	}
	if cache.NotModified(w, r, cache.GenerateETag(data)) {
		return
	}
	if stages == nil {
		stages = []*descriptor.StageDescriptor{}
	}
	router.WriteJSON(w, http.StatusOK, stages)
}

func (t *Task) handleGetState(w http.ResponseWriter, r *http.Request) {
	current := t.states.State()
	if current == nil {
		router.WriteError(w, r, http.StatusServiceUnavailable, "STATE_UNAVAILABLE", "The pipeline state is not initialized")
		return
	}
	router.WriteJSON(w, http.StatusOK, current)
}

func (t *Task) handleSetState(w http.ResponseWriter, r *http.Request) {
	if !auth.HasScope(auth.GetScopes(r.Context()), ScopeStateWrite) {
		router.WriteError(w, r, http.StatusForbidden, "FORBIDDEN", "Token lacks the "+ScopeStateWrite+" scope")
		return
	}

	var change StateChange
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&change); err != nil {
		router.WriteError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid state change: "+err.Error())
		return
	}

	st, err := state.ParseState(change.State)
	if err != nil {
		router.WriteError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if current := t.states.State(); current != nil {
		if change.Name == "" {
			change.Name = current.Name
		}
		if change.Revision == "" {
			change.Revision = current.Revision
		}
	}
	if change.Name == "" {
		change.Name = state.DefaultPipelineName
	}
	if change.Revision == "" {
		change.Revision = state.DefaultPipelineRevision
	}

	record, err := t.states.SetState(change.Name, change.Revision, st, change.Message)
	if err != nil {
		t.logger.Error("failed to set state", zap.Error(err))
		router.WriteError(w, r, http.StatusInternalServerError, "STATE_WRITE_FAILED", "The pipeline state could not be saved")
		return
	}
	router.WriteJSON(w, http.StatusOK, record)
}

// handleStateEvents streams state changes as server-sent events: a snapshot
// of the current record followed by one "state" event per change.
func (t *Task) handleStateEvents(w http.ResponseWriter, r *http.Request) {
	changes, cancel := t.states.Subscribe()
	defer cancel()

	sse, err := stream.NewSSE(w)
	if err != nil {
		t.logger.Warn("event stream unavailable", zap.Error(err))
		return
	}

	if current := t.states.State(); current != nil {
		if err := sse.WriteJSON(eventID(current), "snapshot", current); err != nil {
			return
		}
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case st, ok := <-changes:
			if !ok {
				return
			}
			if err := sse.WriteJSON(eventID(&st), "state", st); err != nil {
				t.logger.Debug("event stream closed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := sse.Comment("keep-alive"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		case <-t.done:
			return
		}
	}
}

func eventID(st *state.PipelineState) string {
	return strconv.FormatInt(st.Timestamp, 10)
}

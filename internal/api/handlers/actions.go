package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/engine"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/sirupsen/logrus"
)

// actionEnvelope is the wire form of a timeline action
type actionEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// itemUpdatesPayload mirrors engine.ItemUpdates with JSON field names
type itemUpdatesPayload struct {
	Name      *string                `json:"name,omitempty"`
	StartTime *int64                 `json:"startTime,omitempty"`
	Duration  *int64                 `json:"duration,omitempty"`
	TrackID   *string                `json:"trackId,omitempty"`
	Src       *string                `json:"src,omitempty"`
	Content   *string                `json:"content,omitempty"`
	Props     *models.ItemProperties `json:"properties,omitempty"`
}

func (p *itemUpdatesPayload) toUpdates() engine.ItemUpdates {
	return engine.ItemUpdates{
		Name:      p.Name,
		StartTime: p.StartTime,
		Duration:  p.Duration,
		TrackID:   p.TrackID,
		Src:       p.Src,
		Content:   p.Content,
		Props:     p.Props,
	}
}

// decodeAction maps a wire envelope to an engine action
func decodeAction(envelope actionEnvelope) (engine.Action, error) {
	unmarshal := func(v any) error {
		if len(envelope.Payload) == 0 {
			return fmt.Errorf("action %s requires a payload", envelope.Type)
		}
		return json.Unmarshal(envelope.Payload, v)
	}

	switch envelope.Type {
	case "ADD_TRACK":
		return engine.AddTrack{}, nil

	case "REMOVE_TRACK":
		var p struct {
			TrackID string `json:"trackId"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.RemoveTrack{TrackID: p.TrackID}, nil

	case "REORDER_TRACKS":
		var p struct {
			FromIndex int `json:"fromIndex"`
			ToIndex   int `json:"toIndex"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.ReorderTracks{FromIndex: p.FromIndex, ToIndex: p.ToIndex}, nil

	case "ADD_ITEM":
		var item models.TimelineItem
		if err := unmarshal(&item); err != nil {
			return nil, err
		}
		return engine.AddItem{Item: item}, nil

	case "UPDATE_ITEM":
		var p struct {
			ItemID  string             `json:"itemId"`
			Updates itemUpdatesPayload `json:"updates"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.UpdateItem{ItemID: p.ItemID, Updates: p.Updates.toUpdates()}, nil

	case "REMOVE_ITEM":
		var p struct {
			ItemID string `json:"itemId"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.RemoveItem{ItemID: p.ItemID}, nil

	case "MOVE_ITEM":
		var p struct {
			ItemID    string `json:"itemId"`
			TrackID   string `json:"trackId"`
			StartTime int64  `json:"startTime"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.MoveItem{ItemID: p.ItemID, TrackID: p.TrackID, StartTime: p.StartTime}, nil

	case "ADD_TRANSITION":
		var transition models.Transition
		if err := unmarshal(&transition); err != nil {
			return nil, err
		}
		return engine.AddTransition{Transition: transition}, nil

	case "UPDATE_TRANSITION":
		var p struct {
			TransitionID string `json:"transitionId"`
			Updates      struct {
				Type     *string `json:"type,omitempty"`
				Duration *int64  `json:"duration,omitempty"`
				Position *int64  `json:"position,omitempty"`
				Effect   *string `json:"effect,omitempty"`
			} `json:"updates"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.UpdateTransition{TransitionID: p.TransitionID, Updates: engine.TransitionUpdates{
			Type:     p.Updates.Type,
			Duration: p.Updates.Duration,
			Position: p.Updates.Position,
			Effect:   p.Updates.Effect,
		}}, nil

	case "REMOVE_TRANSITION":
		var p struct {
			TransitionID string `json:"transitionId"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.RemoveTransition{TransitionID: p.TransitionID}, nil

	case "SET_PLAYHEAD":
		var p struct {
			Position int64 `json:"position"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.SetPlayhead{Position: p.Position}, nil

	case "SET_ZOOM":
		var p struct {
			Zoom float64 `json:"zoom"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.SetZoom{Zoom: p.Zoom}, nil

	case "SELECT_ITEMS":
		var p struct {
			ItemIDs []string `json:"itemIds"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.SelectItems{ItemIDs: p.ItemIDs}, nil

	case "SET_PLAYING":
		var p struct {
			Playing bool `json:"playing"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.SetPlaying{Playing: p.Playing}, nil

	case "SPLIT_ITEM":
		var p struct {
			ItemID   string `json:"itemId"`
			Position int64  `json:"position"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.SplitItem{ItemID: p.ItemID, Position: p.Position}, nil

	case "TRIM_ITEM":
		var p struct {
			ItemID string `json:"itemId"`
			Start  int64  `json:"start"`
			End    int64  `json:"end"`
		}
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return engine.TrimItem{ItemID: p.ItemID, Start: p.Start, End: p.End}, nil

	case "CLEAR_TIMELINE":
		return engine.ClearTimeline{}, nil

	default:
		return nil, fmt.Errorf("unknown action type: %s", envelope.Type)
	}
}

// ActionsHandler dispatches timeline actions and history operations
type ActionsHandler struct {
	timelineCtrl *controllers.TimelineController
	logger       *logrus.Logger
}

// NewActionsHandler creates a new actions handler
func NewActionsHandler(timelineCtrl *controllers.TimelineController, logger *logrus.Logger) *ActionsHandler {
	return &ActionsHandler{
		timelineCtrl: timelineCtrl,
		logger:       logger,
	}
}

// ServeHTTP handles POST /api/timeline/{projectID}/actions
func (h *ActionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.PathValue("projectID")

	var envelope actionEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	action, err := decodeAction(envelope)
	if err != nil {
		h.logger.WithError(err).WithField("project_id", projectID).Warn("Rejected action")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.timelineCtrl.Dispatch(projectID, action); err != nil {
		h.logger.WithError(err).Error("Failed to dispatch action")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeState(w, projectID)
}

// Undo handles POST /api/timeline/{projectID}/undo
func (h *ActionsHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.historyOp(w, r, engine.Undo{})
}

// Redo handles POST /api/timeline/{projectID}/redo
func (h *ActionsHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.historyOp(w, r, engine.Redo{})
}

func (h *ActionsHandler) historyOp(w http.ResponseWriter, r *http.Request, action engine.Action) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.PathValue("projectID")
	if err := h.timelineCtrl.Dispatch(projectID, action); err != nil {
		h.logger.WithError(err).Error("Failed to dispatch history operation")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeState(w, projectID)
}

func (h *ActionsHandler) writeState(w http.ResponseWriter, projectID string) {
	eng, err := h.timelineCtrl.Open(projectID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	state := eng.State()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"timeline": state,
	})
}

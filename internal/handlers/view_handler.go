package handlers

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/engine"
	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ViewHandler serves the derived read views. Every endpoint reads from the
// latest published snapshot only; nothing here touches the database.
type ViewHandler struct {
	coordinator    *engine.Coordinator
	profileService *services.ProfileService
}

func NewViewHandler(coordinator *engine.Coordinator, profileService *services.ProfileService) *ViewHandler {
	return &ViewHandler{coordinator: coordinator, profileService: profileService}
}

// Feed returns all issue groups, most recently active first.
func (h *ViewHandler) Feed(c *fiber.Ctx) error {
	snap := h.coordinator.Latest()
	if snap == nil {
		return snapshotUnavailable(c)
	}
	return c.JSON(dto.ToFeedResponse(snap))
}

// Map returns the location density clusters.
func (h *ViewHandler) Map(c *fiber.Ctx) error {
	snap := h.coordinator.Latest()
	if snap == nil {
		return snapshotUnavailable(c)
	}
	return c.JSON(dto.MapResponse{
		Seq:        snap.Seq,
		ComputedAt: snap.ComputedAt,
		Clusters:   snap.Density,
	})
}

// Leaderboard returns the global experience ranking.
func (h *ViewHandler) Leaderboard(c *fiber.Ctx) error {
	snap := h.coordinator.Latest()
	if snap == nil {
		return snapshotUnavailable(c)
	}
	return c.JSON(dto.LeaderboardResponse{
		Seq:        snap.Seq,
		ComputedAt: snap.ComputedAt,
		Entries:    snap.Leaderboard,
	})
}

// MyStats returns the caller's gamification view from the latest snapshot.
// A user with a profile but no snapshot entry yet gets zeroed stats with a
// null rank.
func (h *ViewHandler) MyStats(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	snap := h.coordinator.Latest()
	if snap == nil {
		return snapshotUnavailable(c)
	}

	if stats, ok := snap.Users[userID]; ok {
		rank := stats.Rank
		return c.JSON(dto.StatsResponse{
			UserID:           stats.UserID,
			Username:         stats.Username,
			ReportCount:      stats.ReportCount,
			ExperiencePoints: stats.ExperiencePoints,
			Titles:           stats.Titles,
			Rank:             &rank,
		})
	}

	profile, err := h.profileService.Get(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Profile not found",
		})
	}
	return c.JSON(dto.StatsResponse{
		UserID:   profile.ID,
		Username: profile.Username,
		Titles:   []string{},
		Rank:     nil,
	})
}

type streamPayload struct {
	Seq         uint64                    `json:"seq"`
	ComputedAt  time.Time                 `json:"computed_at"`
	Groups      []dto.GroupResponse       `json:"groups"`
	Clusters    map[string]engine.Density `json:"clusters"`
	Leaderboard []engine.LeaderboardEntry `json:"leaderboard"`
}

// Stream pushes every published snapshot to the client over SSE. Each
// observer has latest-wins delivery: slow clients skip intermediate snapshots
// but never see a torn one.
func (h *ViewHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	id, ch := h.coordinator.SubscribeObserver()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.coordinator.UnsubscribeObserver(id)

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case snap, ok := <-ch:
				if !ok {
					return
				}
				if err := writeSnapshotEvent(w, snap); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeSnapshotEvent(w *bufio.Writer, snap *engine.Snapshot) error {
	feed := dto.ToFeedResponse(snap)
	payload := streamPayload{
		Seq:         snap.Seq,
		ComputedAt:  snap.ComputedAt,
		Groups:      feed.Groups,
		Clusters:    snap.Density,
		Leaderboard: snap.Leaderboard,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal snapshot event", "seq", snap.Seq, "error", err)
		return err
	}
	if _, err := w.WriteString("event: snapshot\ndata: " + string(data) + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

func snapshotUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Error: true, Message: "Snapshot not available yet",
	})
}

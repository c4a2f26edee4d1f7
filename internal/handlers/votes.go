package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/votes"
)

//go:generate mockgen -destination=mock_votes_test.go -package=handlers . VoteService

// VoteService applies vote requests; *votes.Service implements it.
type VoteService interface {
	Cast(ctx context.Context, userID uuid.UUID, target models.Target, action votes.Action) (votes.Result, error)
	Remove(ctx context.Context, userID uuid.UUID, target models.Target) (votes.Result, error)
}

type VoteHandler struct {
	votes VoteService
	log   logrus.FieldLogger
}

func NewVoteHandler(votes VoteService, log logrus.FieldLogger) *VoteHandler {
	return &VoteHandler{votes: votes, log: log}
}

// Cast handles PATCH /api/vote.
func (h *VoteHandler) Cast(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var input struct {
		TargetID string `json:"targetId" binding:"required"`
		Type     string `json:"type" binding:"required"`
		Action   string `json:"action" binding:"required"`
	}
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	target, err := models.ParseTarget(input.Type, input.TargetID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	action, err := votes.ParseAction(input.Action)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res, err := h.votes.Cast(c.Request.Context(), userID, target, action)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"vote":    res.Vote,
		"message": res.Status.Message(),
		"status":  res.Status,
		"karma":   res.Karma,
	})
}

// Remove handles DELETE /api/vote/:targetId. The target kind comes from
// ?type= or, failing that, a {"type": ...} body.
func (h *VoteHandler) Remove(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	kind := c.Query("type")
	if kind == "" && c.Request.ContentLength != 0 {
		var body struct {
			Type string `json:"type"`
		}
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(c, h.log, apperr.Validation("Invalid request body"))
			return
		}
		kind = body.Type
	}

	target, err := models.ParseTarget(kind, c.Param("targetId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res, err := h.votes.Remove(c.Request.Context(), userID, target)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Status.Message(),
		"status":  res.Status,
		"karma":   res.Karma,
	})
}

package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/pkg/api"
)

// changeOrder moves a step or image to the requested position. The
// position is bounds-checked here against the sequence cap and again by
// the sequencer against the live sibling count
func (s *Server) changeOrder(
	c *gin.Context, r order.Ranger, item order.Reorderable,
) {
	var req api.ChangeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}

	pos, err := s.requestedPosition(req.Order)
	if err != nil {
		fail(c, err)
		return
	}

	res, err := s.sequencer.Reorder(c.Request.Context(), r, item, pos)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ChangeOrderResponse{Order: res})
}

func (s *Server) requestedPosition(v any) (int, error) {
	pos, err := order.ParsePosition(v)
	if err != nil {
		return 0, err
	}
	if pos > order.MaxPositions {
		return 0, fmt.Errorf("%w: %d > %d", order.ErrOutOfRange, pos,
			order.MaxPositions)
	}
	if pos < s.minPosition() {
		return 0, fmt.Errorf("%w: %d < %d", order.ErrInvalidArgument, pos,
			s.minPosition())
	}
	return pos, nil
}

// minPosition is 1 unless the zero policy lets 0 stand for the front
func (s *Server) minPosition() int {
	if s.sequencer.Policy() == order.ZeroAsFirst {
		return 0
	}
	return 1
}

func itemID(c *gin.Context) (api.ItemID, error) {
	id, ok := api.ParseItemID(c.Param("id"))
	if !ok {
		return "", fmt.Errorf("%w: %q", order.ErrNotFound, c.Param("id"))
	}
	return id, nil
}

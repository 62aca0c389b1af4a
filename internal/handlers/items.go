package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inventory/api/internal/export"
	"inventory/api/internal/middleware"
	"inventory/api/internal/models"
)

type itemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Location  string    `json:"location"`
	PhotoURL  *string   `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toItemResponse(item models.Item) itemResponse {
	return itemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Location:  item.Location,
		PhotoURL:  item.PhotoURL,
		CreatedAt: item.CreatedAt,
	}
}

func toItemResponses(items []models.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

func (h HandlerSet) ListItems(c *gin.Context) {
	var (
		items []models.Item
		err   error
	)
	if query := c.Query("q"); query != "" {
		items, err = h.catalog.Search(c.Request.Context(), query)
	} else {
		items, err = h.catalog.List(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toItemResponses(items)})
}

func (h HandlerSet) SuggestItems(c *gin.Context) {
	items, err := h.catalog.SuggestSimilar(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toItemResponses(items)})
}

func (h HandlerSet) CreateItem(c *gin.Context) {
	draft, photoData, err := h.readItemForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	confirm := c.Query("confirm") == "true"

	item, err := h.catalog.Create(c.Request.Context(), middleware.SessionFrom(c), draft, photoData, confirm)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": toItemResponse(item)})
}

func (h HandlerSet) UpdateItem(c *gin.Context) {
	draft, photoData, err := h.readItemForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.catalog.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), draft, photoData)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": toItemResponse(item)})
}

func (h HandlerSet) DeleteItem(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ExportItems(c *gin.Context) {
	items, err := h.items.ListByName(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	workbook, err := export.Inventory(items)
	if err != nil {
		h.log.Error().Err(err).Msg("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

func (h HandlerSet) readItemForm(c *gin.Context) (models.ItemDraft, []byte, error) {
	quantity, _ := strconv.Atoi(c.PostForm("quantity"))
	draft := models.ItemDraft{
		Name:     c.PostForm("name"),
		Quantity: quantity,
		Location: c.PostForm("location"),
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		// No photo attached is the common case.
		return draft, nil, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return draft, nil, err
	}
	return draft, data, nil
}

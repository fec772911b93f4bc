package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"menu-to-app/internal/modules/menu/domain"
)

// CatalogService カタログ操作
type CatalogService interface {
	List(ctx context.Context, limit, offset int) ([]*domain.CatalogItem, error)
	Get(ctx context.Context, dish string) (*domain.CatalogItem, error)
	Delete(ctx context.Context, dish string) error
	Export(ctx context.Context, w io.Writer) error
	ExportContentType() string
}

// CatalogHandler /api/v1/menu のハンドラー
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler 新しいCatalogHandlerを作成
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// MenuItemResponse カタログ1件
type MenuItemResponse struct {
	ID          int64   `json:"id"`
	Dish        string  `json:"dish"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	UpdatedAt   string  `json:"updated_at"`
}

// MenuListResponse 一覧レスポンス
type MenuListResponse struct {
	Success bool               `json:"success"`
	Items   []MenuItemResponse `json:"items"`
}

// MenuItemEnvelope 1件取得のレスポンス
type MenuItemEnvelope struct {
	Success bool             `json:"success"`
	Item    MenuItemResponse `json:"item"`
}

// HandleMenu GET は一覧（?dish= があれば1件）、DELETE は ?dish= の削除
func (h *CatalogHandler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		sendMethodNotAllowed(w, "GET, DELETE")
	}
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("dish") {
		h.handleGet(w, r)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		sendError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		sendError(w, r, err)
		return
	}

	items, err := h.catalog.List(r.Context(), limit, offset)
	if err != nil {
		sendError(w, r, err)
		return
	}

	response := MenuListResponse{Success: true, Items: make([]MenuItemResponse, len(items))}
	for i, item := range items {
		response.Items[i] = toItemResponse(item)
	}
	sendJSON(w, http.StatusOK, response)
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), r.URL.Query().Get("dish"))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, MenuItemEnvelope{Success: true, Item: toItemResponse(item)})
}

func toItemResponse(item *domain.CatalogItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          item.ID,
		Dish:        item.Dish,
		Description: item.Description,
		Price:       item.Price,
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *CatalogHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), r.URL.Query().Get("dish")); err != nil {
		sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport カタログをスプレッドシートで返す
func (h *CatalogHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendMethodNotAllowed(w, http.MethodGet)
		return
	}

	// 途中で失敗したときにJSONエラーを返せるよう一旦バッファに書く
	var buf bytes.Buffer
	if err := h.catalog.Export(r.Context(), &buf); err != nil {
		sendError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", h.catalog.ExportContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="menu.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewError(domain.KindValidation, name+" must be an integer", nil)
	}
	return v, nil
}

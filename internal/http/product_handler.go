package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lmdl25/kenility-challenge/internal/apperr"
	"github.com/lmdl25/kenility-challenge/internal/service"
)

// maxImageBytes caps product image uploads at 5 MiB.
const maxImageBytes = 5 << 20

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

type productHandler struct {
	s   *Service
	svc service.ProductService
}

func newProductHandler(s *Service, svc service.ProductService) *productHandler {
	return &productHandler{s: s, svc: svc}
}

type createProductRequest struct {
	Name  string  `json:"name" validate:"required"`
	Sku   string  `json:"sku" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[createProductRequest](r)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	if err := h.s.validate.Validate(req); err != nil {
		h.s.respondError(w, r, err)
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:  req.Name,
		Sku:   req.Sku,
		Price: req.Price,
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusCreated, product)
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) attachImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.s.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.s.respondError(w, r, apperr.ImageFileMissing)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		h.s.respondError(w, r, apperr.NewUnsupportedImageType(ext))
		return
	}

	product, err := h.svc.AttachImage(r.Context(), chi.URLParam(r, "id"), service.AttachImageParams{
		Body:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	h.s.respondJSON(w, r, http.StatusOK, product)
}

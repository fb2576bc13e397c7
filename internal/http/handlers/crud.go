package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/carrot/internal/http/respond"
	"github.com/hongminglow/carrot/internal/service"
	"github.com/hongminglow/carrot/internal/storage"
)

// CRUDHandler exposes list/get/create/update/soft-delete for one resource.
type CRUDHandler[T any, PT service.EntityPtr[T]] struct {
	path string
	svc  *service.CRUD[T, PT]
	errs errorWriter
}

// NewCRUDHandler serves svc under path, e.g. "/barns".
func NewCRUDHandler[T any, PT service.EntityPtr[T]](path string, svc *service.CRUD[T, PT], exposeDetails bool) *CRUDHandler[T, PT] {
	return &CRUDHandler[T, PT]{path: path, svc: svc, errs: errorWriter{exposeDetails: exposeDetails}}
}

func (h *CRUDHandler[T, PT]) Register(r chi.Router) {
	r.Get(h.path, h.handleList)
	r.Post(h.path, h.handleCreate)
	r.Get(h.path+"/{id}", h.handleGet)
	r.Put(h.path+"/{id}", h.handleUpdate)
	r.Delete(h.path+"/{id}", h.handleDelete)
}

func (h *CRUDHandler[T, PT]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	respond.JSON(w, http.StatusOK, items)
}

func (h *CRUDHandler[T, PT]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body T
	if err := decode(r, &body); err != nil {
		h.errs.write(w, r, err)
		return
	}
	created, err := h.svc.Create(r.Context(), body)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *CRUDHandler[T, PT]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.errs.write(w, r, notFoundFor(id, err))
		return
	}
	respond.JSON(w, http.StatusOK, item)
}

func (h *CRUDHandler[T, PT]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	var body T
	if err := decode(r, &body); err != nil {
		h.errs.write(w, r, err)
		return
	}
	updated, err := h.svc.Update(r.Context(), id, body)
	if err != nil {
		h.errs.write(w, r, notFoundFor(id, err))
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (h *CRUDHandler[T, PT]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	if _, err := h.svc.Delete(r.Context(), id); err != nil {
		h.errs.write(w, r, notFoundFor(id, err))
		return
	}
	respond.Message(w, http.StatusOK, true, fmt.Sprintf("Data id : %d deleted successfully", id))
}

func notFoundFor(id int64, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return dataNotFound(id)
	}
	return err
}

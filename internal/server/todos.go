package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jpalmerr/todoapi/internal/store"
)

// maxBodySize limits request bodies to 1MB.
const maxBodySize = 1 << 20

// createInput is the accepted body for POST /api/todos.
type createInput struct {
	Text *string `json:"text"`
}

// updateInput is the accepted body for PUT /api/todos/{id}.
// Absent fields stay nil and are left unchanged.
type updateInput struct {
	Text *string `json:"text"`
	Done *bool   `json:"done"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, SuccessList(s.store.List()))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, msgTodoNotFound)
		return
	}

	todo, err := s.store.Get(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Success(todo))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var text string
	if in.Text != nil {
		text = *in.Text
	}

	todo, err := s.store.Create(text)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, Success(todo))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, msgTodoNotFound)
		return
	}

	var in updateInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	todo, err := s.store.Update(id, store.Patch{Text: in.Text, Done: in.Done})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Success(todo))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, msgTodoNotFound)
		return
	}

	todo, err := s.store.Toggle(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Success(todo))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, msgTodoNotFound)
		return
	}

	todo, err := s.store.Delete(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, Success(todo))
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed := s.store.ClearCompleted()
	s.writeJSON(w, http.StatusOK, SuccessMessage(fmt.Sprintf("Cleared %d completed todos", removed)))
}

// writeStoreError maps store errors to HTTP failures.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, msgTodoNotFound)
	case errors.Is(err, store.ErrValidation):
		s.writeError(w, http.StatusBadRequest, msgTextRequired)
	default:
		s.logger.Error("unexpected store error", "error", err)
		s.writeError(w, http.StatusInternalServerError, msgInternalServer)
	}
}

// pathID parses the {id} wildcard. Anything that is not a base-10 integer
// cannot name a stored todo.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

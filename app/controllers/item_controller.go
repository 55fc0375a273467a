package controllers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"trove/app/dto"
	"trove/app/middleware"
	"trove/app/services"
	"trove/app/upload"
)

type ItemController struct {
	Items *services.ItemService
}

func NewItemController(items *services.ItemService) *ItemController {
	return &ItemController{Items: items}
}

func pathID(r *http.Request, key string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// parseItemForm accepts multipart (with an optional photo) or plain JSON.
func parseItemForm(r *http.Request) (name, description string, photo *multipart.FileHeader, errMsg string) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(2 << 20); err != nil {
			return "", "", nil, "Invalid multipart body."
		}
		name = r.FormValue("name")
		description = r.FormValue("description")
		files := r.MultipartForm.File[upload.FieldName]
		if len(files) > 1 {
			return "", "", nil, "Only one photo may be uploaded."
		}
		if len(files) == 1 {
			photo = files[0]
		}
		return name, description, photo, ""
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body.Name, body.Description, nil, ""
}

func writeUploadError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		writeMessage(w, http.StatusBadRequest, "Photo exceeds the maximum allowed size of 1000000 bytes.")
		return true
	case errors.Is(err, upload.ErrBadType):
		writeMessage(w, http.StatusBadRequest, "Only jpeg, jpg and png images are allowed.")
		return true
	}
	return false
}

func (c *ItemController) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	name, description, photo, errMsg := parseItemForm(r)
	if errMsg != "" {
		writeMessage(w, http.StatusBadRequest, errMsg)
		return
	}
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "Item name is required.")
		return
	}
	item, err := c.Items.Create(r.Context(), claims.UserID, name, description, photo)
	if err != nil {
		if writeUploadError(w, err) {
			return
		}
		writeInternal(w, "An error occurred while creating the item.", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewItemResponse(item))
}

func (c *ItemController) GetAll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	items, err := c.Items.List(r.Context(), claims.UserID)
	if err != nil {
		writeInternal(w, "An error occurred while fetching items.", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemList(items))
}

func (c *ItemController) GetByID(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	item, err := c.Items.Get(r.Context(), id, claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found or access denied.")
			return
		}
		writeInternal(w, "An error occurred while fetching the item.", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemResponse(item))
}

func (c *ItemController) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	name, description, photo, errMsg := parseItemForm(r)
	if errMsg != "" {
		writeMessage(w, http.StatusBadRequest, errMsg)
		return
	}
	item, err := c.Items.Update(r.Context(), id, claims.UserID, name, description, photo)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found or access denied.")
			return
		}
		if writeUploadError(w, err) {
			return
		}
		writeInternal(w, "An error occurred while updating the item.", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewItemResponse(item))
}

func (c *ItemController) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	if err := c.Items.Delete(r.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found or access denied.")
			return
		}
		writeInternal(w, "An error occurred while deleting the item.", err)
		return
	}
	writeMessage(w, http.StatusOK, "Item deleted successfully")
}

func (c *ItemController) AddView(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "itemId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	created, count, err := c.Items.RecordView(r.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found.")
			return
		}
		writeInternal(w, "An error occurred while recording the view.", err)
		return
	}
	msg := "viewed"
	if !created {
		msg = "already viewed"
	}
	writeJSON(w, http.StatusOK, dto.InteractionResponse{Message: msg, Count: count})
}

func (c *ItemController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "itemId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	liked, count, err := c.Items.ToggleLike(r.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found.")
			return
		}
		writeInternal(w, "An error occurred while toggling the like.", err)
		return
	}
	msg := "liked"
	if !liked {
		msg = "disliked"
	}
	writeJSON(w, http.StatusOK, dto.InteractionResponse{Message: msg, Count: count})
}

func (c *ItemController) AddComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "itemId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	var req dto.CommentRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if strings.TrimSpace(req.Comment) == "" {
		writeMessage(w, http.StatusBadRequest, "Comment text is required.")
		return
	}
	comment, err := c.Items.AddComment(r.Context(), claims.UserID, id, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found.")
			return
		}
		writeInternal(w, "An error occurred while adding the comment.", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewCommentResponse(comment))
}

func (c *ItemController) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "itemId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid item ID.")
		return
	}
	comments, err := c.Items.ListComments(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found.")
			return
		}
		writeInternal(w, "An error occurred while fetching comments.", err)
		return
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.NewCommentResponse(&comments[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *ItemController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "commentId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID.")
		return
	}
	var req dto.CommentRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if strings.TrimSpace(req.Comment) == "" {
		writeMessage(w, http.StatusBadRequest, "Comment text is required.")
		return
	}
	comment, err := c.Items.UpdateComment(r.Context(), id, claims.UserID, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			writeMessage(w, http.StatusNotFound, "Comment not found or access denied.")
			return
		}
		writeInternal(w, "An error occurred while updating the comment.", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewCommentResponse(comment))
}

func (c *ItemController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	id, ok := pathID(r, "commentId")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID.")
		return
	}
	if err := c.Items.DeleteComment(r.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			writeMessage(w, http.StatusNotFound, "Comment not found or access denied.")
			return
		}
		writeInternal(w, "An error occurred while deleting the comment.", err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment deleted successfully")
}

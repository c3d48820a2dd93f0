package handler

import "net/http"

type refListResponse struct {
	Total int       `json:"total"`
	Items []refItem `json:"items"`
}

// listCategories handles GET /categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := refListResponse{
		Total: len(cats),
		Items: make([]refItem, len(cats)),
	}
	for i, c := range cats {
		resp.Items[i] = refItem{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// listAuthors handles GET /authors.
func (h *Handler) listAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.catalog.Authors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := refListResponse{
		Total: len(authors),
		Items: make([]refItem, len(authors)),
	}
	for i, a := range authors {
		resp.Items[i] = refItem{ID: a.ID, Name: a.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

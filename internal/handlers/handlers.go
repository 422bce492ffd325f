package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// dateLayout is the wire format for donation dates.
const dateLayout = "2006-01-02"

// pathID parses the {id} URL parameter. Returns 0 and false on garbage input.
func pathID(r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

package htmx

import (
	"net/http"
	"strings"
)

// RefreshThemes is sent whenever the saved theme list changes.
const RefreshThemes = "refreshThemes"

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Trigger sets HX-Trigger so the client fires the named events after the swap.
func Trigger(w http.ResponseWriter, events ...string) {
	if len(events) == 0 {
		return
	}
	w.Header().Set("HX-Trigger", strings.Join(events, ","))
}

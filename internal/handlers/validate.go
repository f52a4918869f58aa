package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"islamicTodo/internal/query"
	"islamicTodo/internal/service"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// parseListParams читает search, filter и sort; ошибка - *service.BusinessError
func parseListParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()

	filter, err := query.ParseFilter(q.Get("filter"))
	if err != nil {
		return query.Params{}, service.NewValidationError("filter", err.Error())
	}

	sortMode, err := query.ParseSort(q.Get("sort"))
	if err != nil {
		return query.Params{}, service.NewValidationError("sort", err.Error())
	}

	return query.Params{Search: q.Get("search"), Filter: filter, Sort: sortMode}, nil
}

// decodeOptional читает JSON тело, пустое тело - не ошибка
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

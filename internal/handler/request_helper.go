package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/maintenance-tracker-api/internal/dto"
	"github.com/noah-isme/maintenance-tracker-api/internal/middleware"
	"github.com/noah-isme/maintenance-tracker-api/internal/repository"
	"github.com/noah-isme/maintenance-tracker-api/internal/service"
	appErrors "github.com/noah-isme/maintenance-tracker-api/pkg/errors"
)

const (
	filterParamPrefix = "filter."
	rangeParamPrefix  = "range."

	storedMessage = "Data stored successfully"
)

// viewQueryFromRequest reads a projection from query parameters:
//
//	filter.<field>=a,b   range.<field>=min,max   q=   sort=   dir=asc|desc   group=   expand=k1,k2
func viewQueryFromRequest(c *gin.Context) (dto.ViewQuery, error) {
	q := dto.ViewQuery{
		Search:  strings.TrimSpace(c.Query("q")),
		Sort:    strings.TrimSpace(c.Query("sort")),
		GroupBy: strings.TrimSpace(c.Query("group")),
		Expand:  splitList(c.Query("expand")),
	}
	dir, err := service.ParseDirection(c.Query("dir"))
	if err != nil {
		return dto.ViewQuery{}, err
	}
	q.Direction = dir

	for key, values := range c.Request.URL.Query() {
		switch {
		case strings.HasPrefix(key, filterParamPrefix):
			field := strings.TrimPrefix(key, filterParamPrefix)
			if q.Filters == nil {
				q.Filters = make(map[string][]string)
			}
			for _, v := range values {
				q.Filters[field] = append(q.Filters[field], splitList(v)...)
			}
		case strings.HasPrefix(key, rangeParamPrefix):
			field := strings.TrimPrefix(key, rangeParamPrefix)
			lo, hi, ok := strings.Cut(values[len(values)-1], ",")
			if !ok {
				return dto.ViewQuery{}, appErrors.Clone(appErrors.ErrValidation, "range."+field+" must be min,max")
			}
			if q.Ranges == nil {
				q.Ranges = make(map[string]dto.RangeQuery)
			}
			q.Ranges[field] = dto.RangeQuery{Min: strings.TrimSpace(lo), Max: strings.TrimSpace(hi)}
		}
	}
	return q, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// patchFromBody decodes an `{id, ...fields}` body into the target id and a merge patch.
func patchFromBody(c *gin.Context) (string, repository.Patch, error) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		return "", nil, invalidPayload(err)
	}
	var id string
	if raw, ok := body["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", nil, appErrors.Clone(appErrors.ErrValidation, "id must be a string")
		}
	}
	if strings.TrimSpace(id) == "" {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	delete(body, "id")
	return id, repository.Patch(body), nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

func isReplaceMode(c *gin.Context) bool {
	return strings.EqualFold(c.Query("mode"), "replace")
}

// storedMeta marks a successful write with the stored-data message.
func storedMeta(c *gin.Context) map[string]interface{} {
	middleware.SetMessage(c, storedMessage)
	return middleware.ExtractMeta(c)
}

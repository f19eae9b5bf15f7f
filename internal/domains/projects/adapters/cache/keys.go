package cache

import (
	"fmt"

	"github.com/clockline/clockline/internal/domains/projects/domain"
)

// Key layout inside the cache namespace:
//
//	project:<id>                                  single aggregate
//	list:<skip>:<limit>:<status>:<client>:<resp>  offset page
//	cursor:<token>:<limit>:<status>:<client>      keyset page
//	overdue                                       overdue listing
//
// Mutations drop the touched aggregate plus every page key; page keys encode
// their filters, so a wildcard is the only safe invalidation.
const (
	overdueKey       = "overdue"
	listKeyPattern   = "list:*"
	cursorKeyPattern = "cursor:*"
)

func projectKey(id int64) string {
	return fmt.Sprintf("project:%d", id)
}

func listKey(skip, limit int, status *domain.Status, clientID, responsibleID *int64) string {
	return fmt.Sprintf("list:%d:%d:%s:%s:%s", skip, limit, statusPart(status), idPart(clientID), idPart(responsibleID))
}

func cursorKey(token string, limit int, status *domain.Status, clientID *int64) string {
	if token == "" {
		token = "-"
	}
	return fmt.Sprintf("cursor:%s:%d:%s:%s", token, limit, statusPart(status), idPart(clientID))
}

func statusPart(status *domain.Status) string {
	if status == nil {
		return "-"
	}
	return string(*status)
}

func idPart(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

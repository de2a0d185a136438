// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/taibuivan/yomira-image/internal/platform/constants"
	"github.com/taibuivan/yomira-image/internal/platform/respond"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
	"github.com/taibuivan/yomira-image/pkg/slice"
)

// ServiceIndex is the response of GET /.
type ServiceIndex struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Namespace string   `json:"namespace"`
	Scopes    []string `json:"scopes"`
}

/*
GET /.

Description: Describes the service and the scopes it checks. Clients use the
namespace to request "<namespace>:<scope>" grants.

Response:
  - 200: ServiceIndex
*/
func NewIndexHandler(namespace string) http.HandlerFunc {
	index := ServiceIndex{
		Name:      constants.AppName,
		Version:   constants.AppVersion,
		Namespace: namespace,
		Scopes:    slice.Map(sec.KnownScopes(), func(scope sec.Scope) string { return string(scope) }),
	}

	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, index)
	}
}

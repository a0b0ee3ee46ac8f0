// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"strings"

	"inkwell/cli/internal/gateway"
)

// DefaultRPCPath is the remote procedure that executes one SQL statement.
const DefaultRPCPath = "/rest/v1/rpc/exec_sql"

type execSQLRequest struct {
	SQL string `json:"sql"`
}

// RPCExecutor sends each statement to the remote exec_sql procedure. It goes
// through the Gateway with the service key as its credential, so failures
// surface as gateway.ServerError or gateway.NetworkError.
type RPCExecutor struct {
	client *gateway.Client
	path   string
}

// NewRPCExecutor creates an executor for the service at baseURL. The service
// key is sent both as bearer credential and as the apikey header.
func NewRPCExecutor(baseURL, serviceKey, path string, opts ...gateway.Option) *RPCExecutor {
	if strings.TrimSpace(path) == "" {
		path = DefaultRPCPath
	}
	if serviceKey != "" {
		opts = append(opts, gateway.WithHeader("apikey", serviceKey))
	}
	return &RPCExecutor{
		client: gateway.New(baseURL, gateway.StaticSession(serviceKey), opts...),
		path:   path,
	}
}

// Exec implements Executor.
func (e *RPCExecutor) Exec(ctx context.Context, stmt string) error {
	return e.client.Post(ctx, e.path, execSQLRequest{SQL: stmt}, nil)
}

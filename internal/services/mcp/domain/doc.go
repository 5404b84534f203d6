// Package domain defines the MCP tools and resources of the sect server.
//
// Each tool maps its typed input onto one SectService method and returns the
// service response as structured content. A shared Context lets clients set
// a default session once instead of repeating session_id on every call.
package domain

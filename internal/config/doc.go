// Package config loads urlquery server and CLI configuration.
//
// The configuration is read with viper from urlquery.json (or any format
// viper understands) and URLQUERY_* environment variables, layered over
// Default().
//
// # Configuration File Structure
//
//	{
//	  "addr": ":8080",
//	  "normalizeFromUrl": true,
//	  "sorts": [
//	    {"column": "created_at", "label": "Created"},
//	    "title"
//	  ],
//	  "filters": ["age=int", "status=oneof=open closed"],
//	  "log": {"level": "info", "format": "text"},
//	  "metrics": {"enabled": true, "namespace": "urlquery"},
//	  "tracing": {"enabled": false, "name": "urlquery"},
//	  "websocket": {"readBufferSize": 1024, "writeBufferSize": 1024, "readTimeout": "60s"}
//	}
//
// Environment variables replace dots with underscores, e.g.
// URLQUERY_LOG_LEVEL=debug or URLQUERY_SORTS=a,b,c.
package config

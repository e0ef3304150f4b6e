// Package system serves the API description at / and the health endpoints.
package system

// Package server exposes a Recommender over HTTP with fiber.
package server

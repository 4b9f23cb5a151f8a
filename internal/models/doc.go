// Package models prints the chat models a provider offers for the
// configured API key.
package models

// Package logging builds the zap logger shared by every medtrans component.
package logging

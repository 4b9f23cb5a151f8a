// Package translation turns one English medicine record into its Simplified
// Chinese name, category and description by prompting a language model.
// Transient provider errors are retried with backoff, and a response that
// does not follow the three-field contract fails the record.
package translation

// Package notify delivers email and mobile push messages.
package notify

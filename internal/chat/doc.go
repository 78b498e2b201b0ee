// Package chat holds the assistant conversation: the message list, the
// pending placeholder shown while a reply is on its way, and the history
// window sent to the backend.
package chat

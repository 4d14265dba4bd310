// Package transport converts packed frames to and from the forms carried by
// a text channel.
//
// A packed frame is handed to a channel as Units, one code unit per byte with
// the same ordinal value. Channels that only accept printable text carry the
// base64 armor of those bytes instead (Armor / Unarmor), and deliver lines of
// the form "sender: payload" (ParseMessage).
package transport

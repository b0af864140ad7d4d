// Package server implements the TCP command front end.
//
// Clients connect, send one newline-terminated command, receive the
// reply, and the connection closes. Every outbound message, streamed
// firing events included, is terminated by the sentinel string
// "tcpover" followed by a newline; replies carry an OK;; or FAILED;;
// status prefix. Connections are accepted strictly one at a time, so a
// firing sequence holds the wire until it completes or is aborted.
package server

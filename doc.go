// Package main starts rollcall, an RFID attendance service. It manages users,
// groups, sessions and attendance through a JSON API built on fiber and
// correlates raw RFID reader scans with the session bound to the reader.
package main

// Package migrations embeds the SQL migration scripts for the SQLite store.
package migrations

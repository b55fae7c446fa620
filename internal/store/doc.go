// Package store persists accounts, recipes and their child resources in a
// SQL database. SQLite (modernc.org/sqlite) and MySQL are supported; the
// step and image collections implement order.Ranger so the reorder engine
// can run against them
package store

// Package repository defines the contracts for the durable stores. The
// services only ever see these interfaces; postgres holds the implementation.
package repository

// Storage aggregates the repositories backed by one database
type Storage interface {
	User() UserRepo
	Listing() ListingRepo
}

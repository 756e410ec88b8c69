// Package products implements the product catalog: CRUD over Postgres plus
// image upload to blob storage. Products carry physical dimensions so quotes
// can be priced per container load.
package products

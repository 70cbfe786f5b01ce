// Package fetcher moves bytes: it streams a selected asset into the staging
// directory and unpacks the archive over the installation root, overwriting
// files in place.
package fetcher

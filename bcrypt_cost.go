//go:build !race

package storefront

// The work factor is embedded in every digest, so raising it only affects
// new hashes.
func passwordHashCost() int {
	return 12
}

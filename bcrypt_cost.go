//go:build !race

package verify

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	return bcrypt.DefaultCost
}

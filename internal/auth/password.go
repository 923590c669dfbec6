package auth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is stored inside each digest, so raising it only affects
// newly hashed passwords.
const PasswordCost = 12

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	return string(b), err
}

// CheckPassword treats every bcrypt error, including a malformed digest, as
// a mismatch.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

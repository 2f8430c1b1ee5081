package cryptography

// CryptoHasher verifies the device admin passcode against its argon2id
// hash.
var CryptoHasher Hasher = argonHasher{}

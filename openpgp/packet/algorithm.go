package packet

// PublicKeyAlgorithm represents the different public key system specified
// for OpenPGP. See RFC 4880, section 9.1 and RFC 6637 for the ECC
// extensions.
type PublicKeyAlgorithm uint8

const (
	PubKeyAlgoRSA            PublicKeyAlgorithm = 1
	PubKeyAlgoRSAEncryptOnly PublicKeyAlgorithm = 2 // deprecated
	PubKeyAlgoRSASignOnly    PublicKeyAlgorithm = 3 // deprecated
	PubKeyAlgoElgamalSign    PublicKeyAlgorithm = 16 // deprecated
	PubKeyAlgoDSA            PublicKeyAlgorithm = 17
	PubKeyAlgoECDH           PublicKeyAlgorithm = 18
	PubKeyAlgoECDSA          PublicKeyAlgorithm = 19
	PubKeyAlgoElGamal        PublicKeyAlgorithm = 20
	PubKeyAlgoDiffieHellman  PublicKeyAlgorithm = 21 // reserved
	PubKeyAlgoEdDSA          PublicKeyAlgorithm = 22

	// PubKeyAlgoPrivate100 through PubKeyAlgoPrivate110 are the private/
	// experimental algorithm range from RFC 4880, section 9.1. No
	// cryptographic operation is defined for them; they are recognized by
	// IsExperimental and String, but parsing a key packet that uses one
	// fails with an UnsupportedError.
	PubKeyAlgoPrivate100 PublicKeyAlgorithm = 100
	PubKeyAlgoPrivate110 PublicKeyAlgorithm = 110
)

// CanSign reports whether this algorithm can be used to generate
// signatures, per RFC 4880 section 5.5.2.
func (a PublicKeyAlgorithm) CanSign() bool {
	switch a {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly, PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA:
		return true
	}
	return false
}

// CanEncrypt reports whether this algorithm can be used to encrypt session
// keys.
func (a PublicKeyAlgorithm) CanEncrypt() bool {
	switch a {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoElGamal, PubKeyAlgoECDH:
		return true
	}
	return false
}

// IsExperimental reports whether this algorithm lies in the private/
// experimental range, in which case it is recognized structurally only.
func (a PublicKeyAlgorithm) IsExperimental() bool {
	return a >= PubKeyAlgoPrivate100 && a <= PubKeyAlgoPrivate110
}

func (a PublicKeyAlgorithm) String() string {
	switch a {
	case PubKeyAlgoRSA:
		return "RSA"
	case PubKeyAlgoRSAEncryptOnly:
		return "RSA (encrypt only)"
	case PubKeyAlgoRSASignOnly:
		return "RSA (sign only)"
	case PubKeyAlgoElgamalSign:
		return "Elgamal (sign only)"
	case PubKeyAlgoDSA:
		return "DSA"
	case PubKeyAlgoECDH:
		return "ECDH"
	case PubKeyAlgoECDSA:
		return "ECDSA"
	case PubKeyAlgoElGamal:
		return "Elgamal"
	case PubKeyAlgoDiffieHellman:
		return "Diffie-Hellman"
	case PubKeyAlgoEdDSA:
		return "EdDSA"
	default:
		if a.IsExperimental() {
			return "private/experimental"
		}
		return "unknown"
	}
}

// CipherFunction represents the different block ciphers specified for
// OpenPGP, RFC 4880, section 9.2.
type CipherFunction uint8

const (
	CipherTripleDES CipherFunction = 2
	CipherCAST5     CipherFunction = 3
	CipherAES128    CipherFunction = 7
	CipherAES192    CipherFunction = 8
	CipherAES256    CipherFunction = 9
)

// CompressionAlgo represents the different compression algorithms
// supported by OpenPGP, per RFC 4880, section 9.3. This module does not
// implement compression; the identifier is recognized for preference
// lists and packet framing only (compression engines are an out-of-scope
// collaborator).
type CompressionAlgo uint8

const (
	CompressionNone CompressionAlgo = 0
	CompressionZIP  CompressionAlgo = 1
	CompressionZLIB CompressionAlgo = 2
	CompressionBZIP2 CompressionAlgo = 3
)

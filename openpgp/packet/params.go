package packet

import (
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/openpgp/elgamal"

	"github.com/pgpkit/openpgp/errors"
	"github.com/pgpkit/openpgp/internal/algorithm"
	"github.com/pgpkit/openpgp/internal/ecc"
	"github.com/pgpkit/openpgp/internal/encoding"
)

// PublicKeyParams is the closed, tagged-variant family of algorithm-
// specific public parameter bundles described in spec section 3's
// PublicParams. Go has no sum types, so this sealed interface (only this
// package may implement it) is the idiomatic stand-in: exhaustiveness is
// enforced at the handful of switch sites that construct or dispatch on it,
// not at the type level.
type PublicKeyParams interface {
	algorithm() PublicKeyAlgorithm
	parse(r io.Reader) error
	serialize(w io.Writer) error
	encodedLength() uint16
	bitLength() uint16
}

// SecretKeyParams mirrors PublicKeyParams for the algorithm's secret
// scalars. It never itself performs S2K unwrapping; wrapped/plaintext
// framing lives in private_key.go.
type SecretKeyParams interface {
	algorithm() PublicKeyAlgorithm
	parsePlain(r io.Reader) error
	serializePlain(w io.Writer) error
	validate(pub PublicKeyParams) error
}

// --- RSA ---

type rsaPublicParams struct {
	n, e *encoding.MPI
}

func newRSAPublicParams(pub *rsa.PublicKey) *rsaPublicParams {
	return &rsaPublicParams{
		n: new(encoding.MPI).SetBig(pub.N),
		e: new(encoding.MPI).SetBig(big.NewInt(int64(pub.E))),
	}
}

func (p *rsaPublicParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoRSA }

func (p *rsaPublicParams) parse(r io.Reader) error {
	p.n = new(encoding.MPI)
	if _, err := p.n.ReadFrom(r); err != nil {
		return err
	}
	p.e = new(encoding.MPI)
	if _, err := p.e.ReadFrom(r); err != nil {
		return err
	}
	if len(p.e.Bytes()) > 3 {
		return errors.UnsupportedError("large RSA public exponent")
	}
	return nil
}

func (p *rsaPublicParams) serialize(w io.Writer) error {
	if _, err := w.Write(p.n.EncodedBytes()); err != nil {
		return err
	}
	_, err := w.Write(p.e.EncodedBytes())
	return err
}

func (p *rsaPublicParams) encodedLength() uint16 { return p.n.EncodedLength() + p.e.EncodedLength() }
func (p *rsaPublicParams) bitLength() uint16      { return p.n.BitLength() }

func (p *rsaPublicParams) publicKey() *rsa.PublicKey {
	e := 0
	for _, b := range p.e.Bytes() {
		e <<= 8
		e |= int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(p.n.Bytes()), E: e}
}

type rsaSecretParams struct {
	d, p, q, u *encoding.MPI
}

func newRSASecretParams(priv *rsa.PrivateKey) *rsaSecretParams {
	priv.Precompute()
	return &rsaSecretParams{
		d: new(encoding.MPI).SetBig(priv.D),
		p: new(encoding.MPI).SetBig(priv.Primes[0]),
		q: new(encoding.MPI).SetBig(priv.Primes[1]),
		u: new(encoding.MPI).SetBig(priv.Precomputed.Qinv),
	}
}

func (p *rsaSecretParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoRSA }

func (p *rsaSecretParams) parsePlain(r io.Reader) error {
	p.d = new(encoding.MPI)
	if _, err := p.d.ReadFrom(r); err != nil {
		return err
	}
	p.p = new(encoding.MPI)
	if _, err := p.p.ReadFrom(r); err != nil {
		return err
	}
	p.q = new(encoding.MPI)
	if _, err := p.q.ReadFrom(r); err != nil {
		return err
	}
	p.u = new(encoding.MPI)
	if _, err := p.u.ReadFrom(r); err != nil {
		return err
	}
	return nil
}

func (p *rsaSecretParams) serializePlain(w io.Writer) error {
	for _, f := range []*encoding.MPI{p.d, p.p, p.q, p.u} {
		if _, err := w.Write(f.EncodedBytes()); err != nil {
			return err
		}
	}
	return nil
}

func (p *rsaSecretParams) validate(pub PublicKeyParams) error {
	rpub, ok := pub.(*rsaPublicParams)
	if !ok {
		return errors.InvalidArgumentError("rsa secret params with non-rsa public params")
	}
	pk := &rsa.PrivateKey{
		PublicKey: *rpub.publicKey(),
		D:         new(big.Int).SetBytes(p.d.Bytes()),
		Primes:    []*big.Int{new(big.Int).SetBytes(p.p.Bytes()), new(big.Int).SetBytes(p.q.Bytes())},
	}
	return pk.Validate()
}

func (p *rsaSecretParams) privateKey(pub *rsaPublicParams) *rsa.PrivateKey {
	pk := &rsa.PrivateKey{
		PublicKey: *pub.publicKey(),
		D:         new(big.Int).SetBytes(p.d.Bytes()),
		Primes:    []*big.Int{new(big.Int).SetBytes(p.p.Bytes()), new(big.Int).SetBytes(p.q.Bytes())},
	}
	pk.Precompute()
	return pk
}

// --- DSA ---

type dsaPublicParams struct {
	p, q, g, y *encoding.MPI
}

func newDSAPublicParams(pub *dsa.PublicKey) *dsaPublicParams {
	return &dsaPublicParams{
		p: new(encoding.MPI).SetBig(pub.P),
		q: new(encoding.MPI).SetBig(pub.Q),
		g: new(encoding.MPI).SetBig(pub.G),
		y: new(encoding.MPI).SetBig(pub.Y),
	}
}

func (p *dsaPublicParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoDSA }

func (p *dsaPublicParams) parse(r io.Reader) error {
	for _, f := range []**encoding.MPI{&p.p, &p.q, &p.g, &p.y} {
		*f = new(encoding.MPI)
		if _, err := (*f).ReadFrom(r); err != nil {
			return err
		}
	}
	return nil
}

func (p *dsaPublicParams) serialize(w io.Writer) error {
	for _, f := range []*encoding.MPI{p.p, p.q, p.g, p.y} {
		if _, err := w.Write(f.EncodedBytes()); err != nil {
			return err
		}
	}
	return nil
}

func (p *dsaPublicParams) encodedLength() uint16 {
	return p.p.EncodedLength() + p.q.EncodedLength() + p.g.EncodedLength() + p.y.EncodedLength()
}
func (p *dsaPublicParams) bitLength() uint16 { return p.p.BitLength() }

func (p *dsaPublicParams) publicKey() *dsa.PublicKey {
	return &dsa.PublicKey{
		Parameters: dsa.Parameters{
			P: new(big.Int).SetBytes(p.p.Bytes()),
			Q: new(big.Int).SetBytes(p.q.Bytes()),
			G: new(big.Int).SetBytes(p.g.Bytes()),
		},
		Y: new(big.Int).SetBytes(p.y.Bytes()),
	}
}

type dsaSecretParams struct {
	x *encoding.MPI
}

func newDSASecretParams(priv *dsa.PrivateKey) *dsaSecretParams {
	return &dsaSecretParams{x: new(encoding.MPI).SetBig(priv.X)}
}

func (p *dsaSecretParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoDSA }

func (p *dsaSecretParams) parsePlain(r io.Reader) error {
	p.x = new(encoding.MPI)
	_, err := p.x.ReadFrom(r)
	return err
}

func (p *dsaSecretParams) serializePlain(w io.Writer) error {
	_, err := w.Write(p.x.EncodedBytes())
	return err
}

func (p *dsaSecretParams) validate(pub PublicKeyParams) error {
	if _, ok := pub.(*dsaPublicParams); !ok {
		return errors.InvalidArgumentError("dsa secret params with non-dsa public params")
	}
	return nil
}

func (p *dsaSecretParams) privateKey(pub *dsaPublicParams) *dsa.PrivateKey {
	return &dsa.PrivateKey{
		PublicKey: *pub.publicKey(),
		X:         new(big.Int).SetBytes(p.x.Bytes()),
	}
}

// --- Elgamal (encryption only; deprecated ElgamalSign round-trips the same
// parameter shape but has no sign path defined by this module) ---

type elgamalPublicParams struct {
	p, g, y *encoding.MPI
}

func newElgamalPublicParams(pub *elgamal.PublicKey) *elgamalPublicParams {
	return &elgamalPublicParams{
		p: new(encoding.MPI).SetBig(pub.P),
		g: new(encoding.MPI).SetBig(pub.G),
		y: new(encoding.MPI).SetBig(pub.Y),
	}
}

func (p *elgamalPublicParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoElGamal }

func (p *elgamalPublicParams) parse(r io.Reader) error {
	for _, f := range []**encoding.MPI{&p.p, &p.g, &p.y} {
		*f = new(encoding.MPI)
		if _, err := (*f).ReadFrom(r); err != nil {
			return err
		}
	}
	return nil
}

func (p *elgamalPublicParams) serialize(w io.Writer) error {
	for _, f := range []*encoding.MPI{p.p, p.g, p.y} {
		if _, err := w.Write(f.EncodedBytes()); err != nil {
			return err
		}
	}
	return nil
}

func (p *elgamalPublicParams) encodedLength() uint16 {
	return p.p.EncodedLength() + p.g.EncodedLength() + p.y.EncodedLength()
}
func (p *elgamalPublicParams) bitLength() uint16 { return p.p.BitLength() }

func (p *elgamalPublicParams) publicKey() *elgamal.PublicKey {
	return &elgamal.PublicKey{
		P: new(big.Int).SetBytes(p.p.Bytes()),
		G: new(big.Int).SetBytes(p.g.Bytes()),
		Y: new(big.Int).SetBytes(p.y.Bytes()),
	}
}

type elgamalSecretParams struct {
	x *encoding.MPI
}

func (p *elgamalSecretParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoElGamal }

func (p *elgamalSecretParams) parsePlain(r io.Reader) error {
	p.x = new(encoding.MPI)
	_, err := p.x.ReadFrom(r)
	return err
}

func (p *elgamalSecretParams) serializePlain(w io.Writer) error {
	_, err := w.Write(p.x.EncodedBytes())
	return err
}

func (p *elgamalSecretParams) validate(pub PublicKeyParams) error {
	if _, ok := pub.(*elgamalPublicParams); !ok {
		return errors.InvalidArgumentError("elgamal secret params with non-elgamal public params")
	}
	return nil
}

// --- ECDSA ---

type ecdsaPublicParams struct {
	oid   *encoding.OID
	point *encoding.MPI
	curve *ecc.CurveInfo
}

func newECDSAPublicParams(pub *ecdsa.PublicKey) (*ecdsaPublicParams, error) {
	curve := ecc.FindByCurve(pub.Curve)
	if curve == nil {
		return nil, &errors.UnsupportedCurveError{}
	}
	return &ecdsaPublicParams{
		oid:   encoding.NewOID(curve.Oid),
		point: encoding.NewMPI(elliptic.Marshal(pub.Curve, pub.X, pub.Y)),
		curve: curve,
	}, nil
}

func (p *ecdsaPublicParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoECDSA }

func (p *ecdsaPublicParams) parse(r io.Reader) error {
	p.oid = new(encoding.OID)
	if _, err := p.oid.ReadFrom(r); err != nil {
		return err
	}
	curve := ecc.FindByOid(p.oid.Bytes())
	if curve == nil || curve.SigAlgorithm != ecc.ECDSA {
		return &errors.UnsupportedCurveError{OID: p.oid.Bytes()}
	}
	p.curve = curve
	p.point = new(encoding.MPI)
	_, err := p.point.ReadFrom(r)
	return err
}

func (p *ecdsaPublicParams) serialize(w io.Writer) error {
	if _, err := w.Write(p.oid.EncodedBytes()); err != nil {
		return err
	}
	_, err := w.Write(p.point.EncodedBytes())
	return err
}

func (p *ecdsaPublicParams) encodedLength() uint16 { return p.oid.EncodedLength() + p.point.EncodedLength() }
func (p *ecdsaPublicParams) bitLength() uint16      { return p.point.BitLength() }

func (p *ecdsaPublicParams) publicKey() (*ecdsa.PublicKey, error) {
	x, y := elliptic.Unmarshal(p.curve.Curve, p.point.Bytes())
	if x == nil {
		return nil, errors.StructuralError("failed to parse EC point")
	}
	return &ecdsa.PublicKey{Curve: p.curve.Curve, X: x, Y: y}, nil
}

type ecdsaSecretParams struct {
	d *encoding.MPI
}

func newECDSASecretParams(priv *ecdsa.PrivateKey) *ecdsaSecretParams {
	return &ecdsaSecretParams{d: new(encoding.MPI).SetBig(priv.D)}
}

func (p *ecdsaSecretParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoECDSA }

func (p *ecdsaSecretParams) parsePlain(r io.Reader) error {
	p.d = new(encoding.MPI)
	_, err := p.d.ReadFrom(r)
	return err
}

func (p *ecdsaSecretParams) serializePlain(w io.Writer) error {
	_, err := w.Write(p.d.EncodedBytes())
	return err
}

func (p *ecdsaSecretParams) validate(pub PublicKeyParams) error {
	if _, ok := pub.(*ecdsaPublicParams); !ok {
		return errors.InvalidArgumentError("ecdsa secret params with non-ecdsa public params")
	}
	return nil
}

func (p *ecdsaSecretParams) privateKey(pub *ecdsaPublicParams) (*ecdsa.PrivateKey, error) {
	pub2, err := pub.publicKey()
	if err != nil {
		return nil, err
	}
	return &ecdsa.PrivateKey{PublicKey: *pub2, D: new(big.Int).SetBytes(p.d.Bytes())}, nil
}

// --- ECDH ---

type ecdhPublicParams struct {
	oid    *encoding.OID
	point  *encoding.OpaqueMPI
	kdf    *encoding.OID // 3 octets: reserved(0x01), hash id, cipher id
	curve  *ecc.CurveInfo
}

func newECDHPublicParams(curve *ecc.CurveInfo, pointBytes []byte, kdfHash algorithm.Hash, kdfCipher algorithm.Cipher) *ecdhPublicParams {
	return &ecdhPublicParams{
		oid:   encoding.NewOID(curve.Oid),
		point: encoding.NewOpaqueMPI(pointBytes),
		kdf:   encoding.NewOID([]byte{0x01, kdfHash.Id(), kdfCipher.Id()}),
		curve: curve,
	}
}

func (p *ecdhPublicParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoECDH }

func (p *ecdhPublicParams) parse(r io.Reader) error {
	p.oid = new(encoding.OID)
	if _, err := p.oid.ReadFrom(r); err != nil {
		return err
	}
	curve := ecc.FindECDHByOid(p.oid.Bytes())
	if curve == nil {
		return &errors.UnsupportedCurveError{OID: p.oid.Bytes()}
	}
	p.curve = curve
	p.point = new(encoding.OpaqueMPI)
	if _, err := p.point.ReadFrom(r); err != nil {
		return err
	}
	p.kdf = new(encoding.OID)
	if _, err := p.kdf.ReadFrom(r); err != nil {
		return err
	}
	if kdfLen := len(p.kdf.Bytes()); kdfLen < 3 {
		return errors.StructuralError(fmt.Sprintf("unsupported ECDH KDF length: %d", kdfLen))
	}
	if reserved := p.kdf.Bytes()[0]; reserved != 0x01 {
		return errors.StructuralError(fmt.Sprintf("unsupported ECDH KDF reserved field: %d", reserved))
	}
	if _, ok := algorithm.HashById[p.kdf.Bytes()[1]]; !ok {
		return &errors.UnsupportedAlgorithmError{Algorithm: p.kdf.Bytes()[1]}
	}
	if _, ok := algorithm.CipherById[p.kdf.Bytes()[2]]; !ok {
		return &errors.UnsupportedAlgorithmError{Algorithm: p.kdf.Bytes()[2]}
	}
	return nil
}

func (p *ecdhPublicParams) serialize(w io.Writer) error {
	if _, err := w.Write(p.oid.EncodedBytes()); err != nil {
		return err
	}
	if _, err := w.Write(p.point.EncodedBytes()); err != nil {
		return err
	}
	_, err := w.Write(p.kdf.EncodedBytes())
	return err
}

func (p *ecdhPublicParams) encodedLength() uint16 {
	return p.oid.EncodedLength() + p.point.EncodedLength() + p.kdf.EncodedLength()
}
func (p *ecdhPublicParams) bitLength() uint16 { return p.point.BitLength() }

func (p *ecdhPublicParams) KDFHash() algorithm.Hash     { return algorithm.HashById[p.kdf.Bytes()[1]] }
func (p *ecdhPublicParams) KDFCipher() algorithm.Cipher { return algorithm.CipherById[p.kdf.Bytes()[2]] }

type ecdhSecretParams struct {
	d *encoding.MPI
}

func (p *ecdhSecretParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoECDH }

func (p *ecdhSecretParams) parsePlain(r io.Reader) error {
	p.d = new(encoding.MPI)
	_, err := p.d.ReadFrom(r)
	return err
}

func (p *ecdhSecretParams) serializePlain(w io.Writer) error {
	_, err := w.Write(p.d.EncodedBytes())
	return err
}

func (p *ecdhSecretParams) validate(pub PublicKeyParams) error {
	if _, ok := pub.(*ecdhPublicParams); !ok {
		return errors.InvalidArgumentError("ecdh secret params with non-ecdh public params")
	}
	return nil
}

// --- EdDSA ---

type eddsaPublicParams struct {
	oid   *encoding.OID
	point *encoding.MPI
}

func newEdDSAPublicParams(pub ed25519.PublicKey) *eddsaPublicParams {
	curve := ecc.FindByName("Ed25519")
	// Native point format, see draft-koch-eddsa-for-openpgp-04, Appendix B:
	// a 0x40 compression-format marker followed by the raw point.
	return &eddsaPublicParams{
		oid:   encoding.NewOID(curve.Oid),
		point: encoding.NewMPI(append([]byte{0x40}, pub...)),
	}
}

func (p *eddsaPublicParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoEdDSA }

func (p *eddsaPublicParams) parse(r io.Reader) error {
	p.oid = new(encoding.OID)
	if _, err := p.oid.ReadFrom(r); err != nil {
		return err
	}
	curve := ecc.FindByOid(p.oid.Bytes())
	if curve == nil || curve.SigAlgorithm != ecc.EdDSA {
		return &errors.UnsupportedCurveError{OID: p.oid.Bytes()}
	}
	p.point = new(encoding.MPI)
	if _, err := p.point.ReadFrom(r); err != nil {
		return err
	}
	if len(p.point.Bytes()) == 0 {
		return errors.StructuralError("empty EdDSA point")
	}
	switch flag := p.point.Bytes()[0]; flag {
	case 0x40:
		// compact format, as written by newEdDSAPublicParams.
	default:
		return errors.UnsupportedError(fmt.Sprintf("EdDSA point compression %d", flag))
	}
	return nil
}

func (p *eddsaPublicParams) serialize(w io.Writer) error {
	if _, err := w.Write(p.oid.EncodedBytes()); err != nil {
		return err
	}
	_, err := w.Write(p.point.EncodedBytes())
	return err
}

func (p *eddsaPublicParams) encodedLength() uint16 { return p.oid.EncodedLength() + p.point.EncodedLength() }
func (p *eddsaPublicParams) bitLength() uint16      { return p.point.BitLength() }

func (p *eddsaPublicParams) publicKey() ed25519.PublicKey {
	raw := p.point.Bytes()[1:]
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, raw)
	return pub
}

type eddsaSecretParams struct {
	d *encoding.MPI
}

func newEdDSASecretParams(priv ed25519.PrivateKey) *eddsaSecretParams {
	// x/crypto/ed25519 private keys are the 64-byte seed||pub; OpenPGP
	// stores only the 32-byte seed as the secret scalar.
	seed := priv[:32]
	return &eddsaSecretParams{d: encoding.NewMPI(seed)}
}

func (p *eddsaSecretParams) algorithm() PublicKeyAlgorithm { return PubKeyAlgoEdDSA }

func (p *eddsaSecretParams) parsePlain(r io.Reader) error {
	p.d = new(encoding.MPI)
	_, err := p.d.ReadFrom(r)
	return err
}

func (p *eddsaSecretParams) serializePlain(w io.Writer) error {
	_, err := w.Write(p.d.EncodedBytes())
	return err
}

func (p *eddsaSecretParams) validate(pub PublicKeyParams) error {
	if _, ok := pub.(*eddsaPublicParams); !ok {
		return errors.InvalidArgumentError("eddsa secret params with non-eddsa public params")
	}
	return nil
}

func (p *eddsaSecretParams) privateKey(pub *eddsaPublicParams) ed25519.PrivateKey {
	seed := p.d.Bytes()
	// Re-derive the 64-byte expanded private key from the stored 32-byte
	// seed; ed25519.NewKeyFromSeed recomputes the public half, which must
	// match pub.
	return ed25519.NewKeyFromSeed(seed)
}

// --- experimental / unsupported ---

// experimentalParams stores the MPI sequence of a private/experimental
// algorithm (100-110) opaquely: no cryptographic operation is defined for
// these, but the packet must still round-trip structurally.
type experimentalParams struct {
	algo   PublicKeyAlgorithm
	fields []*encoding.MPI
}

func (p *experimentalParams) algorithm() PublicKeyAlgorithm { return p.algo }

func (p *experimentalParams) parse(r io.Reader) error {
	// Without algorithm-specific knowledge there is no way to know how
	// many MPIs follow, so experimental parameters are never parsed;
	// newPublicKeyParams in public_key.go rejects these algorithms before
	// parse is reached.
	return errors.UnsupportedError("private/experimental public key algorithm")
}

func (p *experimentalParams) serialize(w io.Writer) error {
	for _, f := range p.fields {
		if _, err := w.Write(f.EncodedBytes()); err != nil {
			return err
		}
	}
	return nil
}

func (p *experimentalParams) encodedLength() uint16 {
	var n uint16
	for _, f := range p.fields {
		n += f.EncodedLength()
	}
	return n
}

func (p *experimentalParams) bitLength() uint16 {
	if len(p.fields) == 0 {
		return 0
	}
	return p.fields[0].BitLength()
}

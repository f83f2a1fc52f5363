// Package serialize implements the byte-exact wire encodings of
// public keys, secret keys (full and minimal), and signatures (spec
// §6), independent of any SSZ/bincode framing library — only the
// field layout is specified, and that is what this package produces.
package serialize

import (
	"encoding/binary"

	"github.com/koala-crypto/xmss-koalabear/merkle"
	"github.com/koala-crypto/xmss-koalabear/params"
	"github.com/koala-crypto/xmss-koalabear/th"
	"github.com/koala-crypto/xmss-koalabear/xmss"
	"github.com/koala-crypto/xmss-koalabear/xmsserr"
)

// EncodePublicKey serializes pk as: root field elements ‖ the
// tweakable hash's randomized public parameter ‖ a 1-byte tag
// enumerating the configuration variant. The parameter travels on
// the wire (spec.md's distilled §6 text only names the configuration
// tag, but the teacher's own key codec, xmss/json.go, always carries
// Parameter alongside the tree: without it Verify cannot recompute
// the same tweakable hash the signer used).
func EncodePublicKey(pk *xmss.PublicKey, p params.Parameters) ([]byte, error) {
	tag, ok := p.Tag()
	if !ok {
		return nil, xmsserr.WrapDeserialization("public key: parameters have no registered tag")
	}
	out := make([]byte, 0, len(pk.Root)+len(pk.Parameter)+1)
	out = append(out, pk.Root...)
	out = append(out, pk.Parameter...)
	out = append(out, tag)
	return out, nil
}

// DecodePublicKey reverses EncodePublicKey, using rootLen/paramLen
// (the tweakable hash's OutputLen/ParameterLen) to split the payload.
func DecodePublicKey(data []byte, rootLen, paramLen int) (*xmss.PublicKey, params.Parameters, error) {
	if len(data) != rootLen+paramLen+1 {
		return nil, params.Parameters{}, xmsserr.WrapDeserialization("public key: unexpected length")
	}
	root := make(th.Domain, rootLen)
	copy(root, data[:rootLen])

	parameter := make(th.Params, paramLen)
	copy(parameter, data[rootLen:rootLen+paramLen])

	p, err := params.FromTag(data[rootLen+paramLen])
	if err != nil {
		return nil, params.Parameters{}, xmsserr.WrapDeserialization(err.Error())
	}

	return &xmss.PublicKey{Root: root, Parameter: parameter, Parameters: p}, p, nil
}

// EncodeSecretKeyFull serializes sk with its Merkle subtree, per spec
// §6 "Full": prf_key(32) ‖ parameter ‖ activation_epoch(u64 LE) ‖
// num_active_epochs(u64 LE) ‖ parameter_tag(1) ‖ tree_nodes.
func EncodeSecretKeyFull(sk *xmss.SecretKey, p params.Parameters) ([]byte, error) {
	tag, ok := p.Tag()
	if !ok {
		return nil, xmsserr.WrapDeserialization("secret key: parameters have no registered tag")
	}

	var buf []byte
	buf = append(buf, sk.PRFKey...)
	buf = append(buf, sk.Parameter...)

	var u64buf [8]byte
	binary.LittleEndian.PutUint64(u64buf[:], uint64(sk.ActivationEpoch))
	buf = append(buf, u64buf[:]...)
	binary.LittleEndian.PutUint64(u64buf[:], uint64(sk.NumActiveEpochs))
	buf = append(buf, u64buf[:]...)

	buf = append(buf, tag)

	buf = append(buf, encodeTree(sk.Tree)...)

	return buf, nil
}

// EncodeSecretKeyMinimal serializes sk without its Merkle subtree: the
// receiver must re-materialize the preparation window via the
// prepare package before it can sign.
func EncodeSecretKeyMinimal(sk *xmss.SecretKey, p params.Parameters) ([]byte, error) {
	tag, ok := p.Tag()
	if !ok {
		return nil, xmsserr.WrapDeserialization("secret key: parameters have no registered tag")
	}

	var buf []byte
	buf = append(buf, sk.PRFKey...)
	buf = append(buf, sk.Parameter...)

	var u64buf [8]byte
	binary.LittleEndian.PutUint64(u64buf[:], uint64(sk.ActivationEpoch))
	buf = append(buf, u64buf[:]...)
	binary.LittleEndian.PutUint64(u64buf[:], uint64(sk.NumActiveEpochs))
	buf = append(buf, u64buf[:]...)

	buf = append(buf, tag)
	return buf, nil
}

// encodeTree packs a HashTree's layers as: depth(u32 LE) ‖
// num_layers(u32 LE) ‖ per layer: start_index(u32 LE) ‖
// num_nodes(u32 LE) ‖ nodes.
func encodeTree(tree *merkle.HashTree) []byte {
	var buf []byte

	var u32buf [4]byte
	binary.LittleEndian.PutUint32(u32buf[:], uint32(tree.GetDepth()))
	buf = append(buf, u32buf[:]...)

	layers := tree.GetLayers()
	binary.LittleEndian.PutUint32(u32buf[:], uint32(len(layers)))
	buf = append(buf, u32buf[:]...)

	for _, layer := range layers {
		binary.LittleEndian.PutUint32(u32buf[:], uint32(layer.GetStartIndex()))
		buf = append(buf, u32buf[:]...)

		nodes := layer.GetNodes()
		binary.LittleEndian.PutUint32(u32buf[:], uint32(len(nodes)))
		buf = append(buf, u32buf[:]...)

		for _, node := range nodes {
			buf = append(buf, node...)
		}
	}

	return buf
}

// decodeTree reverses encodeTree, given the tweakable hash's output
// length to recover node boundaries, and thash/parameter to rebuild a
// queryable HashTree.
func decodeTree(data []byte, nodeLen int, thash th.TweakableHash, parameter th.Params) (*merkle.HashTree, int, error) {
	if len(data) < 8 {
		return nil, 0, xmsserr.WrapDeserialization("secret key: truncated tree header")
	}
	depth := int(binary.LittleEndian.Uint32(data[0:4]))
	numLayers := int(binary.LittleEndian.Uint32(data[4:8]))
	offset := 8

	layers := make([]merkle.HashTreeLayer, 0, numLayers)
	for i := 0; i < numLayers; i++ {
		if offset+8 > len(data) {
			return nil, 0, xmsserr.WrapDeserialization("secret key: truncated layer header")
		}
		startIndex := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		numNodes := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8

		nodes := make([]th.Domain, numNodes)
		for j := 0; j < numNodes; j++ {
			if offset+nodeLen > len(data) {
				return nil, 0, xmsserr.WrapDeserialization("secret key: truncated node")
			}
			node := make(th.Domain, nodeLen)
			copy(node, data[offset:offset+nodeLen])
			nodes[j] = node
			offset += nodeLen
		}

		layers = append(layers, merkle.NewHashTreeLayer(startIndex, nodes))
	}

	tree := merkle.NewHashTreeFromLayers(depth, layers, parameter, thash)
	return tree, offset, nil
}

// DecodeSecretKeyFull reverses EncodeSecretKeyFull. thash is required
// to reconstruct a queryable HashTree; paramLen is its ParameterLen.
func DecodeSecretKeyFull(data []byte, prfKeyLen, paramLen, nodeLen int, thash th.TweakableHash) (*xmss.SecretKey, params.Parameters, error) {
	if len(data) < prfKeyLen+paramLen+8+8+1 {
		return nil, params.Parameters{}, xmsserr.WrapDeserialization("secret key: unexpected length")
	}

	offset := 0
	prfKey := make([]byte, prfKeyLen)
	copy(prfKey, data[offset:offset+prfKeyLen])
	offset += prfKeyLen

	parameter := make(th.Params, paramLen)
	copy(parameter, data[offset:offset+paramLen])
	offset += paramLen

	activationEpoch := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8
	numActiveEpochs := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	tag := data[offset]
	offset++

	p, err := params.FromTag(tag)
	if err != nil {
		return nil, params.Parameters{}, xmsserr.WrapDeserialization(err.Error())
	}

	tree, _, err := decodeTree(data[offset:], nodeLen, thash, parameter)
	if err != nil {
		return nil, params.Parameters{}, err
	}

	sk := &xmss.SecretKey{
		PRFKey:          prfKey,
		Tree:            tree,
		Parameter:       parameter,
		Parameters:      p,
		ActivationEpoch: activationEpoch,
		NumActiveEpochs: numActiveEpochs,
	}
	return sk, p, nil
}

// DecodeSecretKeyMinimal reverses EncodeSecretKeyMinimal. The caller
// must re-materialize a preparation window via the prepare package
// before the returned key can sign.
func DecodeSecretKeyMinimal(data []byte, prfKeyLen, paramLen int) (*xmss.SecretKey, params.Parameters, error) {
	if len(data) != prfKeyLen+paramLen+8+8+1 {
		return nil, params.Parameters{}, xmsserr.WrapDeserialization("secret key: unexpected length")
	}

	offset := 0
	prfKey := make([]byte, prfKeyLen)
	copy(prfKey, data[offset:offset+prfKeyLen])
	offset += prfKeyLen

	parameter := make(th.Params, paramLen)
	copy(parameter, data[offset:offset+paramLen])
	offset += paramLen

	activationEpoch := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8
	numActiveEpochs := int(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	tag := data[offset]

	p, err := params.FromTag(tag)
	if err != nil {
		return nil, params.Parameters{}, xmsserr.WrapDeserialization(err.Error())
	}

	sk := &xmss.SecretKey{
		PRFKey:          prfKey,
		Parameter:       parameter,
		Parameters:      p,
		ActivationEpoch: activationEpoch,
		NumActiveEpochs: numActiveEpochs,
	}
	return sk, p, nil
}

// EncodeSignature serializes sig as: epoch(u64 LE) ‖
// auth_path_len(u32 LE) ‖ auth_path nodes ‖ rho ‖ hashes_len(u32 LE)
// ‖ hashes.
func EncodeSignature(epoch uint32, sig *xmss.Signature) []byte {
	var buf []byte

	var u64buf [8]byte
	binary.LittleEndian.PutUint64(u64buf[:], uint64(epoch))
	buf = append(buf, u64buf[:]...)

	var u32buf [4]byte
	binary.LittleEndian.PutUint32(u32buf[:], uint32(len(sig.Path.CoPath)))
	buf = append(buf, u32buf[:]...)
	for _, node := range sig.Path.CoPath {
		buf = append(buf, node...)
	}

	buf = append(buf, sig.Rho...)

	binary.LittleEndian.PutUint32(u32buf[:], uint32(len(sig.Hashes)))
	buf = append(buf, u32buf[:]...)
	for _, h := range sig.Hashes {
		buf = append(buf, h...)
	}

	return buf
}

// DecodeSignature reverses EncodeSignature, given the tweakable
// hash's node length and the encoding's rho length.
func DecodeSignature(data []byte, nodeLen, rhoLen int) (uint32, *xmss.Signature, error) {
	if len(data) < 8+4 {
		return 0, nil, xmsserr.WrapDeserialization("signature: truncated header")
	}

	epoch := uint32(binary.LittleEndian.Uint64(data[0:8]))
	offset := 8

	pathLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	coPath := make([]th.Domain, pathLen)
	for i := 0; i < pathLen; i++ {
		if offset+nodeLen > len(data) {
			return 0, nil, xmsserr.WrapDeserialization("signature: truncated auth path")
		}
		node := make(th.Domain, nodeLen)
		copy(node, data[offset:offset+nodeLen])
		coPath[i] = node
		offset += nodeLen
	}

	if offset+rhoLen > len(data) {
		return 0, nil, xmsserr.WrapDeserialization("signature: truncated rho")
	}
	rho := make([]byte, rhoLen)
	copy(rho, data[offset:offset+rhoLen])
	offset += rhoLen

	if offset+4 > len(data) {
		return 0, nil, xmsserr.WrapDeserialization("signature: truncated hashes length")
	}
	hashesLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	hashes := make([]th.Domain, hashesLen)
	for i := 0; i < hashesLen; i++ {
		if offset+nodeLen > len(data) {
			return 0, nil, xmsserr.WrapDeserialization("signature: truncated hashes")
		}
		node := make(th.Domain, nodeLen)
		copy(node, data[offset:offset+nodeLen])
		hashes[i] = node
		offset += nodeLen
	}

	if offset != len(data) {
		return 0, nil, xmsserr.WrapDeserialization("signature: trailing bytes")
	}

	return epoch, &xmss.Signature{
		Path:   merkle.HashTreeOpening{CoPath: coPath},
		Rho:    rho,
		Hashes: hashes,
	}, nil
}

package fdt

import "encoding/binary"

// Builder constructs a Flattened Device Tree blob. Mostly a test aid:
// fabricate a tree, parse it back, decode it.
type Builder struct {
	structure []byte
	strings   []byte
	stringOff map[string]uint32
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{stringOff: make(map[string]uint32)}
}

// BeginNode starts a node with the given name.
func (b *Builder) BeginNode(name string) {
	b.appendU32(fdtBeginNode)
	b.appendBytes(append([]byte(name), 0))
}

// EndNode ends the current node.
func (b *Builder) EndNode() {
	b.appendU32(fdtEndNode)
}

// AddPropertyString adds a string property.
func (b *Builder) AddPropertyString(name, value string) {
	b.AddPropertyBytes(name, append([]byte(value), 0))
}

// AddPropertyU32Array adds an array of big-endian cells.
func (b *Builder) AddPropertyU32Array(name string, values []uint32) {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(data[4*i:], v)
	}
	b.AddPropertyBytes(name, data)
}

// AddPropertyU32 adds a single-cell property.
func (b *Builder) AddPropertyU32(name string, value uint32) {
	b.AddPropertyU32Array(name, []uint32{value})
}

// AddPropertyBytes adds a raw property.
func (b *Builder) AddPropertyBytes(name string, data []byte) {
	b.appendU32(fdtProp)
	b.appendU32(uint32(len(data)))
	b.appendU32(b.addString(name))
	b.appendBytes(data)
}

// Build assembles the blob.
func (b *Builder) Build() []byte {
	b.appendU32(fdtEnd)

	const headerSize = 40
	const rsvmapSize = 16 // empty reservation map
	structOff := uint32(headerSize + rsvmapSize)
	stringsOff := structOff + uint32(len(b.structure))
	totalSize := stringsOff + uint32(len(b.strings))

	blob := make([]byte, totalSize)
	binary.BigEndian.PutUint32(blob[0:], fdtMagic)
	binary.BigEndian.PutUint32(blob[4:], totalSize)
	binary.BigEndian.PutUint32(blob[8:], structOff)
	binary.BigEndian.PutUint32(blob[12:], stringsOff)
	binary.BigEndian.PutUint32(blob[16:], headerSize)
	binary.BigEndian.PutUint32(blob[20:], fdtVersion)
	binary.BigEndian.PutUint32(blob[24:], fdtCompatible)
	binary.BigEndian.PutUint32(blob[32:], uint32(len(b.strings)))
	binary.BigEndian.PutUint32(blob[36:], uint32(len(b.structure)))
	copy(blob[structOff:], b.structure)
	copy(blob[stringsOff:], b.strings)
	return blob
}

func (b *Builder) appendU32(v uint32) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	b.structure = append(b.structure, buf...)
}

func (b *Builder) appendBytes(data []byte) {
	b.structure = append(b.structure, data...)
	for len(b.structure)%4 != 0 {
		b.structure = append(b.structure, 0)
	}
}

func (b *Builder) addString(name string) uint32 {
	if off, ok := b.stringOff[name]; ok {
		return off
	}
	off := uint32(len(b.strings))
	b.stringOff[name] = off
	b.strings = append(b.strings, name...)
	b.strings = append(b.strings, 0)
	return off
}

// Package fdt reads and writes Flattened Device Trees, just enough to
// pull interrupt descriptions out of a boot-provided blob and to
// fabricate blobs in tests.
package fdt

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	fdtMagic      = 0xd00dfeed
	fdtVersion    = 17
	fdtCompatible = 16

	fdtBeginNode = 0x00000001
	fdtEndNode   = 0x00000002
	fdtProp      = 0x00000003
	fdtNop       = 0x00000004
	fdtEnd       = 0x00000009
)

// Node is a parsed device-tree node. Property values stay raw bytes;
// use PropU32s for cell arrays.
type Node struct {
	Name       string
	Properties map[string][]byte
	Children   []*Node
}

// Find walks to a descendant by slash-separated path relative to this
// node. Unit addresses in node names are matched loosely: "gic"
// matches "gic@8000000".
func (n *Node) Find(path string) (*Node, bool) {
	cur := n
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		var next *Node
		for _, child := range cur.Children {
			name, _, _ := strings.Cut(child.Name, "@")
			if child.Name == part || name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// PropU32s returns a property decoded as an array of big-endian cells,
// or nil if absent or misshapen.
func (n *Node) PropU32s(name string) []uint32 {
	data, ok := n.Properties[name]
	if !ok || len(data)%4 != 0 {
		return nil
	}
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return out
}

// Parse reads an FDT blob into a node tree.
func Parse(blob []byte) (*Node, error) {
	if len(blob) < 40 {
		return nil, fmt.Errorf("fdt: blob too short")
	}
	if binary.BigEndian.Uint32(blob) != fdtMagic {
		return nil, fmt.Errorf("fdt: bad magic %#x", binary.BigEndian.Uint32(blob))
	}
	structOff := binary.BigEndian.Uint32(blob[8:])
	stringsOff := binary.BigEndian.Uint32(blob[12:])
	structSize := binary.BigEndian.Uint32(blob[36:])
	if uint64(structOff)+uint64(structSize) > uint64(len(blob)) || stringsOff > uint32(len(blob)) {
		return nil, fmt.Errorf("fdt: header offsets out of range")
	}

	p := &parser{
		structure: blob[structOff : structOff+structSize],
		strings:   blob[stringsOff:],
	}
	for {
		token, err := p.token()
		if err != nil {
			return nil, err
		}
		switch token {
		case fdtNop:
		case fdtBeginNode:
			return p.node()
		default:
			return nil, fmt.Errorf("fdt: expected root node, found token %#x", token)
		}
	}
}

type parser struct {
	structure []byte
	strings   []byte
	off       uint32
}

func (p *parser) token() (uint32, error) {
	if int(p.off)+4 > len(p.structure) {
		return 0, fmt.Errorf("fdt: truncated structure block")
	}
	v := binary.BigEndian.Uint32(p.structure[p.off:])
	p.off += 4
	return v, nil
}

func (p *parser) name() (string, error) {
	start := p.off
	for int(p.off) < len(p.structure) && p.structure[p.off] != 0 {
		p.off++
	}
	if int(p.off) >= len(p.structure) {
		return "", fmt.Errorf("fdt: unterminated node name")
	}
	name := string(p.structure[start:p.off])
	p.off++
	p.align()
	return name, nil
}

func (p *parser) align() {
	p.off = (p.off + 3) &^ 3
}

// node parses the body of a node whose begin token and name tag have
// already been consumed at the name position.
func (p *parser) node() (*Node, error) {
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	n := &Node{Name: name, Properties: map[string][]byte{}}
	for {
		token, err := p.token()
		if err != nil {
			return nil, err
		}
		switch token {
		case fdtNop:
		case fdtProp:
			length, err := p.token()
			if err != nil {
				return nil, err
			}
			nameOff, err := p.token()
			if err != nil {
				return nil, err
			}
			if int(p.off)+int(length) > len(p.structure) {
				return nil, fmt.Errorf("fdt: truncated property in %q", n.Name)
			}
			n.Properties[p.stringAt(nameOff)] = p.structure[p.off : p.off+length]
			p.off += length
			p.align()
		case fdtBeginNode:
			child, err := p.node()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case fdtEndNode:
			return n, nil
		case fdtEnd:
			return nil, fmt.Errorf("fdt: structure block ended inside node %q", n.Name)
		default:
			return nil, fmt.Errorf("fdt: unknown token %#x", token)
		}
	}
}

func (p *parser) stringAt(off uint32) string {
	if int(off) >= len(p.strings) {
		return ""
	}
	end := off
	for int(end) < len(p.strings) && p.strings[end] != 0 {
		end++
	}
	return string(p.strings[off:end])
}

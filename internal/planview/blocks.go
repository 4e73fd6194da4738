package planview

// Block is a render unit: either a single non-list line or a maximal run of
// adjacent list items of the same kind.
type Block struct {
	Lines []Line
}

// IsList reports whether the block is a list block.
func (b Block) IsList() bool {
	return len(b.Lines) > 0 && b.Lines[0].Kind.IsListItem()
}

// Ordered reports whether the block is a numbered list.
func (b Block) Ordered() bool {
	return len(b.Lines) > 0 && b.Lines[0].Kind == KindOrderedItem
}

// GroupBlocks walks lines once and coalesces each run of same-kind list
// items into one block. A change of list kind or any non-list line ends the
// run. Every line lands in exactly one block, in input order.
func GroupBlocks(lines []Line) []Block {
	blocks := make([]Block, 0, len(lines))
	for i := 0; i < len(lines); {
		kind := lines[i].Kind
		if !kind.IsListItem() {
			blocks = append(blocks, Block{Lines: lines[i : i+1 : i+1]})
			i++
			continue
		}

		end := i + 1
		for end < len(lines) && lines[end].Kind == kind {
			end++
		}
		blocks = append(blocks, Block{Lines: lines[i:end:end]})
		i = end
	}
	return blocks
}

// Flatten returns the lines of blocks in order.
func Flatten(blocks []Block) []Line {
	var lines []Line
	for _, b := range blocks {
		lines = append(lines, b.Lines...)
	}
	return lines
}

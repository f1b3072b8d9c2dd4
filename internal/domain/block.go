package domain

import "fmt"

// PartitionKind is the split decision of one block in the partition tree.
type PartitionKind uint8

const (
	// PartitionNone makes the block a leaf.
	PartitionNone PartitionKind = iota
	// PartitionHorz splits the block into top and bottom halves.
	PartitionHorz
	// PartitionVert splits the block into left and right halves.
	PartitionVert
	// PartitionSplit splits the block into four quadrants.
	PartitionSplit

	partitionKindCount
)

var partitionNames = [partitionKindCount]string{
	PartitionNone:  "NONE",
	PartitionHorz:  "HORZ",
	PartitionVert:  "VERT",
	PartitionSplit: "SPLIT",
}

// Valid reports whether k is one of the four partition kinds.
func (k PartitionKind) Valid() bool {
	return k < partitionKindCount
}

// Children returns the number of child blocks produced by k.
func (k PartitionKind) Children() int {
	switch k {
	case PartitionHorz, PartitionVert:
		return 2
	case PartitionSplit:
		return 4
	default:
		return 0
	}
}

func (k PartitionKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("PartitionKind(%d)", uint8(k))
	}
	return partitionNames[k]
}

// ParsePartitionKind maps a partition name to its kind. Unknown names map to
// an invalid kind so the model builder can reject them.
func ParsePartitionKind(name string) PartitionKind {
	for k, n := range partitionNames {
		if n == name {
			return PartitionKind(k)
		}
	}
	return partitionKindCount
}

// PredictionMode is the intra or inter prediction mode of a leaf block.
// The intra modes follow VP9 order; VP8 modes map onto the same table.
type PredictionMode uint8

const (
	ModeDC PredictionMode = iota
	ModeV
	ModeH
	ModeD45
	ModeD135
	ModeD117
	ModeD153
	ModeD207
	ModeD63
	ModeTM
	ModeNearestMV
	ModeNearMV
	ModeZeroMV
	ModeNewMV

	// PredictionModeCount is the size of the mode tables.
	PredictionModeCount
)

var modeNames = [PredictionModeCount]string{
	ModeDC:        "DC_PRED",
	ModeV:         "V_PRED",
	ModeH:         "H_PRED",
	ModeD45:       "D45_PRED",
	ModeD135:      "D135_PRED",
	ModeD117:      "D117_PRED",
	ModeD153:      "D153_PRED",
	ModeD207:      "D207_PRED",
	ModeD63:       "D63_PRED",
	ModeTM:        "TM_PRED",
	ModeNearestMV: "NEARESTMV",
	ModeNearMV:    "NEARMV",
	ModeZeroMV:    "ZEROMV",
	ModeNewMV:     "NEWMV",
}

// Valid reports whether m is a known prediction mode.
func (m PredictionMode) Valid() bool {
	return m < PredictionModeCount
}

// IsInter reports whether m predicts from a reference frame.
func (m PredictionMode) IsInter() bool {
	return m >= ModeNearestMV && m < PredictionModeCount
}

func (m PredictionMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("PredictionMode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParsePredictionMode maps a mode name to its value. Both "NEWMV" and the
// short form without the _PRED suffix are accepted for intra modes.
func ParsePredictionMode(name string) PredictionMode {
	for m, n := range modeNames {
		if n == name || n == name+"_PRED" {
			return PredictionMode(m)
		}
	}
	return PredictionModeCount
}

// TxSize is the transform size used inside a leaf block.
type TxSize uint8

const (
	Tx4x4 TxSize = iota
	Tx8x8
	Tx16x16
	Tx32x32

	txSizeCount
)

// Valid reports whether t is a known transform size.
func (t TxSize) Valid() bool {
	return t < txSizeCount
}

// Pixels returns the side length of the transform in pixels.
func (t TxSize) Pixels() int {
	return 4 << t
}

func (t TxSize) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TxSize(%d)", uint8(t))
	}
	n := t.Pixels()
	return fmt.Sprintf("%dx%d", n, n)
}

// ParseTxSize maps "4x4".."32x32" to a transform size.
func ParseTxSize(name string) TxSize {
	for t := Tx4x4; t < txSizeCount; t++ {
		if t.String() == name {
			return t
		}
	}
	return txSizeCount
}

// RefFrame names the reference buffer an inter block predicts from.
type RefFrame int8

const (
	RefNone   RefFrame = -1
	RefIntra  RefFrame = 0
	RefLast   RefFrame = 1
	RefGolden RefFrame = 2
	RefAltRef RefFrame = 3
)

func (r RefFrame) String() string {
	switch r {
	case RefNone:
		return "none"
	case RefIntra:
		return "intra"
	case RefLast:
		return "last"
	case RefGolden:
		return "golden"
	case RefAltRef:
		return "altref"
	default:
		return fmt.Sprintf("RefFrame(%d)", int8(r))
	}
}

// MotionVector is a displacement in 1/8-pixel units. X grows rightwards and
// Y grows downwards.
type MotionVector struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
}

// IsZero reports whether the vector is (0,0).
func (v MotionVector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// MaxSegments is the number of segment ids a stream may use.
const MaxSegments = 8

// LeafAttributes carries the coding decisions of a leaf block.
type LeafAttributes struct {
	Mode PredictionMode `json:"mode"`

	// Refs holds up to two reference frames for compound prediction.
	Refs [2]RefFrame `json:"refs"`

	// MVs holds NumMVs motion vectors. Only inter modes carry vectors.
	MVs    [2]MotionVector `json:"mvs"`
	NumMVs uint8           `json:"num_mvs"`

	TxSize  TxSize `json:"tx_size"`
	Skip    bool   `json:"skip"`
	Segment uint8  `json:"segment"`
}

// MotionVectors returns the populated motion vectors.
func (a *LeafAttributes) MotionVectors() []MotionVector {
	n := min(int(a.NumMVs), len(a.MVs))
	return a.MVs[:n]
}

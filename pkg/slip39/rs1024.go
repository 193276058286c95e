package slip39

var rs1024Gen = [10]uint32{
	0xe0e040,
	0x1c1c080,
	0x3838100,
	0x7070200,
	0xe0e0009,
	0x1c0c2412,
	0x38086c24,
	0x3090fc48,
	0x21b1f890,
	0x3f3f120,
}

func customizationString(extendable bool) string {
	if extendable {
		return "shamir_extendable"
	}
	return "shamir"
}

func rs1024Polymod(values []int) uint32 {
	chk := uint32(1)
	for _, v := range values {
		b := chk >> 20
		chk = (chk&0xfffff)<<10 ^ uint32(v)
		for i := 0; i < 10; i++ {
			if (b>>i)&1 != 0 {
				chk ^= rs1024Gen[i]
			}
		}
	}
	return chk
}

func checksumInput(data []int, extendable bool) []int {
	cs := customizationString(extendable)
	values := make([]int, 0, len(cs)+len(data)+ChecksumLengthWords)
	for i := 0; i < len(cs); i++ {
		values = append(values, int(cs[i]))
	}
	return append(values, data...)
}

func rs1024CreateChecksum(data []int, extendable bool) []int {
	values := checksumInput(data, extendable)
	values = append(values, make([]int, ChecksumLengthWords)...)
	polymod := rs1024Polymod(values) ^ 1

	checksum := make([]int, ChecksumLengthWords)
	for i := range checksum {
		shift := RadixBits * (ChecksumLengthWords - 1 - i)
		checksum[i] = int(polymod>>shift) & (1<<RadixBits - 1)
	}
	return checksum
}

func rs1024VerifyChecksum(data []int, extendable bool) bool {
	return rs1024Polymod(checksumInput(data, extendable)) == 1
}

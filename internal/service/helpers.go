package service

import "strconv"

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

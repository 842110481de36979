package telemetry

import (
	"fmt"
	"strings"
)

// MapType identifies the current map
type MapType int32

const (
	MapNone MapType = 0
	MapSAN  MapType = -1
	MapYRD  MapType = 1
)

const (
	MapMAT MapType = iota + 2
	MapFAC
	MapRES
	MapACC
	MapSUR
	MapMIN
	MapEXI
	MapSTO
	MapREC
	MapSCR
	MapWAS
	MapGAR
	MapDSF
	MapSUB
	MapLOW
	MapUPP
	MapPRO
	MapDEE
	MapZIO
	MapDAT
	MapZHI
	MapWAR
	MapEXT
	MapCET
	MapARC
	MapHUB
	MapARM
	MapLAB
	MapQUA
	MapTES
	MapSEC
	MapFRG
	MapCOM
	MapAC0
	MapLAI
	MapTOW
)

const (
	MapW00 MapType = iota + 1000
	MapW01
	MapW02
	MapW03
	MapW04
	MapW05
	MapW06
	MapW07
	MapW08
	MapW09
)

var mapTypeNames = map[MapType]string{
	MapNone: "NONE", MapSAN: "SAN", MapYRD: "YRD",
	MapMAT: "MAT", MapFAC: "FAC", MapRES: "RES", MapACC: "ACC", MapSUR: "SUR",
	MapMIN: "MIN", MapEXI: "EXI", MapSTO: "STO", MapREC: "REC", MapSCR: "SCR",
	MapWAS: "WAS", MapGAR: "GAR", MapDSF: "DSF", MapSUB: "SUB", MapLOW: "LOW",
	MapUPP: "UPP", MapPRO: "PRO", MapDEE: "DEE", MapZIO: "ZIO", MapDAT: "DAT",
	MapZHI: "ZHI", MapWAR: "WAR", MapEXT: "EXT", MapCET: "CET", MapARC: "ARC",
	MapHUB: "HUB", MapARM: "ARM", MapLAB: "LAB", MapQUA: "QUA", MapTES: "TES",
	MapSEC: "SEC", MapFRG: "FRG", MapCOM: "COM", MapAC0: "AC0", MapLAI: "LAI",
	MapTOW: "TOW",
	MapW00: "W00", MapW01: "W01", MapW02: "W02", MapW03: "W03", MapW04: "W04",
	MapW05: "W05", MapW06: "W06", MapW07: "W07", MapW08: "W08", MapW09: "W09",
}

func (m MapType) String() string {
	if name, ok := mapTypeNames[m]; ok {
		return "MAP_" + name
	}
	return fmt.Sprintf("MapType(%d)", int32(m))
}

// ParseMapType accepts "QUA", "qua" or "MAP_QUA"
func ParseMapType(s string) (MapType, error) {
	want := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "MAP_")
	for m, name := range mapTypeNames {
		if name == want {
			return m, nil
		}
	}
	return MapNone, fmt.Errorf("unknown map type %q", s)
}

package prj

import (
	"fmt"
)

// Reference maps an identifier to substrings that identify it inside a .prj
// description. Entries are scanned in order, so projected systems come before
// the geographic systems their descriptions embed.
type Reference struct {
	Identifier string
	Match      []string
}

// Identifiers maps EPSG (and a few ESRI) codes to PROJ definitions.
var Identifiers = map[string]string{
	"4326":   "+proj=longlat +datum=WGS84 +no_defs +type=crs",
	"4269":   "+proj=longlat +datum=NAD83 +no_defs +type=crs",
	"4267":   "+proj=longlat +datum=NAD27 +no_defs +type=crs",
	"4258":   "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs +type=crs",
	"4490":   "+proj=longlat +ellps=GRS80 +no_defs +type=crs",
	"4214":   "+proj=longlat +ellps=krass +towgs84=15.8,-154.4,-82.3,0,0,0,0 +no_defs +type=crs",
	"4610":   "+proj=longlat +a=6378140 +b=6356755.288157528 +no_defs +type=crs",
	"3857":   "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wktext +no_defs +type=crs",
	"900913": "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wktext +no_defs +type=crs",
	"102100": "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wktext +no_defs +type=crs",
	"3395":   "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs +type=crs",
	"27700":  "+proj=tmerc +lat_0=49 +lon_0=-2 +k=0.9996012717 +x_0=400000 +y_0=-100000 +ellps=airy +towgs84=446.448,-125.157,542.06,0.15,0.247,0.842,-20.489 +units=m +no_defs +type=crs",
	"2154":   "+proj=lcc +lat_0=46.5 +lon_0=3 +lat_1=49 +lat_2=44 +x_0=700000 +y_0=6600000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs +type=crs",
	"3035":   "+proj=laea +lat_0=52 +lon_0=10 +x_0=4321000 +y_0=3210000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs +type=crs",
	"5070":   "+proj=aea +lat_0=23 +lon_0=-96 +lat_1=29.5 +lat_2=45.5 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs +type=crs",
	"2263":   "+proj=lcc +lat_0=40.1666666666667 +lon_0=-74 +lat_1=41.0333333333333 +lat_2=40.6666666666667 +x_0=300000 +y_0=0 +datum=NAD83 +units=us-ft +no_defs +type=crs",
}

// References is the ordered description → identifier table.
var References = []Reference{
	{Identifier: "3857", Match: []string{"WGS_1984_Web_Mercator", "WGS 84 / Pseudo-Mercator", "Popular Visualisation Pseudo Mercator"}},
	{Identifier: "3395", Match: []string{`"WGS_1984_World_Mercator"`, `"WGS 84 / World Mercator"`}},
	{Identifier: "27700", Match: []string{"British_National_Grid", "OSGB 1936 / British National Grid"}},
	{Identifier: "2154", Match: []string{"RGF_1993_Lambert_93", "RGF93 / Lambert-93", "RGF93_Lambert_93"}},
	{Identifier: "3035", Match: []string{"ETRS_1989_LAEA", "ETRS89 / LAEA Europe", "ETRS89-extended / LAEA Europe"}},
	{Identifier: "5070", Match: []string{"NAD_1983_Contiguous_USA_Albers", "NAD83 / Conus Albers"}},
	{Identifier: "2263", Match: []string{"NAD_1983_StatePlane_New_York_Long_Island_FIPS_3104_Feet", "NAD83 / New York Long Island (ftUS)"}},
}

// geographic entries are appended after the UTM zones in init
var geographicReferences = []Reference{
	{Identifier: "4490", Match: []string{"GCS_China_Geodetic_Coordinate_System_2000", "China Geodetic Coordinate System 2000"}},
	{Identifier: "4610", Match: []string{"GCS_Xian_1980"}},
	{Identifier: "4214", Match: []string{"GCS_Beijing_1954"}},
	{Identifier: "4258", Match: []string{"GCS_ETRS_1989", `GEOGCS["ETRS89"`}},
	{Identifier: "4269", Match: []string{"GCS_North_American_1983", `GEOGCS["NAD83"`}},
	{Identifier: "4267", Match: []string{"GCS_North_American_1927", `GEOGCS["NAD27"`}},
	{Identifier: "4326", Match: []string{"GCS_WGS_1984", `GEOGCS["WGS 84"`}},
}

func init() {
	for zone := 1; zone <= 60; zone++ {
		north := fmt.Sprintf("%d", 32600+zone)
		south := fmt.Sprintf("%d", 32700+zone)
		Identifiers[north] = fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs +type=crs", zone)
		Identifiers[south] = fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs +type=crs", zone)

		References = append(References,
			Reference{Identifier: north, Match: []string{
				fmt.Sprintf(`"WGS_1984_UTM_Zone_%dN"`, zone),
				fmt.Sprintf(`"WGS 84 / UTM zone %dN"`, zone),
			}},
			Reference{Identifier: south, Match: []string{
				fmt.Sprintf(`"WGS_1984_UTM_Zone_%dS"`, zone),
				fmt.Sprintf(`"WGS 84 / UTM zone %dS"`, zone),
			}},
		)

		if zone <= 23 {
			nad83 := fmt.Sprintf("%d", 26900+zone)
			Identifiers[nad83] = fmt.Sprintf("+proj=utm +zone=%d +datum=NAD83 +units=m +no_defs +type=crs", zone)
			References = append(References, Reference{Identifier: nad83, Match: []string{
				fmt.Sprintf(`"NAD_1983_UTM_Zone_%dN"`, zone),
				fmt.Sprintf(`"NAD83 / UTM zone %dN"`, zone),
			}})
		}
	}
	References = append(References, geographicReferences...)
}

package jpegr

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

const (
	nsRDF       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsXMPMeta   = "adobe:ns:meta/"
	nsHDRGM     = "http://ns.adobe.com/hdr-gain-map/1.0/"
	nsContainer = "http://ns.google.com/photos/1.0/container/"
	nsItem      = "http://ns.google.com/photos/1.0/container/item/"

	semanticPrimary = "Primary"
	semanticGainMap = "GainMap"

	gainMapVersion = "1.0"
)

// GainMapMetadata describes how a gain map extends the primary image's dynamic range. Boosts and
// capacities are linear ratios; they are stored as log2 values in XMP.
type GainMapMetadata struct {
	Version            string
	MaxContentBoost    float64
	MinContentBoost    float64
	Gamma              float64
	OffsetSDR          float64
	OffsetHDR          float64
	HDRCapacityMin     float64
	HDRCapacityMax     float64
	BaseRenditionIsHDR bool
}

// DefaultMetadata is used when encoding without explicit metadata: up to a 4x boost, applied in
// full on displays with at least 4x headroom.
func DefaultMetadata() GainMapMetadata {
	return GainMapMetadata{
		Version:         gainMapVersion,
		MaxContentBoost: 4,
		MinContentBoost: 1,
		Gamma:           1,
		OffsetSDR:       1.0 / 64,
		OffsetHDR:       1.0 / 64,
		HDRCapacityMin:  1,
		HDRCapacityMax:  4,
	}
}

func (md GainMapMetadata) validate() error {
	if md.MinContentBoost <= 0 || md.MaxContentBoost < md.MinContentBoost {
		return errors.Wrapf(ErrInvalidMetadata, "content boost range [%v, %v]", md.MinContentBoost, md.MaxContentBoost)
	}
	if md.HDRCapacityMin < 1 || md.HDRCapacityMax < md.HDRCapacityMin {
		return errors.Wrapf(ErrInvalidMetadata, "hdr capacity range [%v, %v]", md.HDRCapacityMin, md.HDRCapacityMax)
	}
	if md.Gamma <= 0 {
		return errors.Wrapf(ErrInvalidMetadata, "gamma %v", md.Gamma)
	}
	return nil
}

type xmpMeta struct {
	XMLName xml.Name `xml:"adobe:ns:meta/ xmpmeta"`
	RDF     struct {
		Descriptions []xmpDescription `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
	} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# RDF"`
}

type xmpDescription struct {
	Version            string  `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ Version,attr"`
	GainMapMin         float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ GainMapMin,attr"`
	GainMapMax         float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ GainMapMax,attr"`
	Gamma              float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ Gamma,attr"`
	OffsetSDR          float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ OffsetSDR,attr"`
	OffsetHDR          float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ OffsetHDR,attr"`
	HDRCapacityMin     float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ HDRCapacityMin,attr"`
	HDRCapacityMax     float64 `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ HDRCapacityMax,attr"`
	BaseRenditionIsHDR bool    `xml:"http://ns.adobe.com/hdr-gain-map/1.0/ BaseRenditionIsHDR,attr"`

	Directory *struct {
		Seq struct {
			Items []struct {
				Item xmpItem `xml:"http://ns.google.com/photos/1.0/container/ Item"`
			} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# li"`
		} `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Seq"`
	} `xml:"http://ns.google.com/photos/1.0/container/ Directory"`
}

type xmpItem struct {
	Semantic string `xml:"http://ns.google.com/photos/1.0/container/item/ Semantic,attr"`
	Mime     string `xml:"http://ns.google.com/photos/1.0/container/item/ Mime,attr"`
	Length   int    `xml:"http://ns.google.com/photos/1.0/container/item/ Length,attr"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func xmpPacket(description string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmpNamespace)
	fmt.Fprintf(&buf, `<x:xmpmeta xmlns:x=%q x:xmptk="testimage">`, nsXMPMeta)
	fmt.Fprintf(&buf, `<rdf:RDF xmlns:rdf=%q>`, nsRDF)
	buf.WriteString(description)
	buf.WriteString(`</rdf:RDF></x:xmpmeta>`)
	return buf.Bytes()
}

// primaryXMP is the APP1 payload of the primary image: it declares the gain map version and
// lists the gain map stream that follows the primary image.
func primaryXMP(gainMapLength int) []byte {
	var desc bytes.Buffer
	fmt.Fprintf(&desc, `<rdf:Description xmlns:Container=%q xmlns:Item=%q xmlns:hdrgm=%q hdrgm:Version=%q>`,
		nsContainer, nsItem, nsHDRGM, gainMapVersion)
	desc.WriteString(`<Container:Directory><rdf:Seq>`)
	fmt.Fprintf(&desc, `<rdf:li rdf:parseType="Resource"><Container:Item Item:Semantic=%q Item:Mime="image/jpeg"/></rdf:li>`,
		semanticPrimary)
	fmt.Fprintf(&desc,
		`<rdf:li rdf:parseType="Resource"><Container:Item Item:Semantic=%q Item:Mime="image/jpeg" Item:Length="%d"/></rdf:li>`,
		semanticGainMap, gainMapLength)
	desc.WriteString(`</rdf:Seq></Container:Directory></rdf:Description>`)
	return xmpPacket(desc.String())
}

// gainMapXMP is the APP1 payload of the gain map image.
func gainMapXMP(md GainMapMetadata) []byte {
	version := md.Version
	if version == "" {
		version = gainMapVersion
	}
	desc := fmt.Sprintf(`<rdf:Description xmlns:hdrgm=%q hdrgm:Version=%q hdrgm:GainMapMin=%q hdrgm:GainMapMax=%q `+
		`hdrgm:Gamma=%q hdrgm:OffsetSDR=%q hdrgm:OffsetHDR=%q hdrgm:HDRCapacityMin=%q hdrgm:HDRCapacityMax=%q `+
		`hdrgm:BaseRenditionIsHDR=%q/>`,
		nsHDRGM,
		version,
		formatFloat(math.Log2(md.MinContentBoost)),
		formatFloat(math.Log2(md.MaxContentBoost)),
		formatFloat(md.Gamma),
		formatFloat(md.OffsetSDR),
		formatFloat(md.OffsetHDR),
		formatFloat(math.Log2(md.HDRCapacityMin)),
		formatFloat(math.Log2(md.HDRCapacityMax)),
		strconv.FormatBool(md.BaseRenditionIsHDR),
	)
	return xmpPacket(desc)
}

func parseXMP(payload []byte) (*xmpMeta, error) {
	var meta xmpMeta
	if err := xml.Unmarshal(bytes.TrimPrefix(payload, []byte(xmpNamespace)), &meta); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return &meta, nil
}

// gainMapLength returns the length of the GainMap container item, or 0.
func (meta *xmpMeta) gainMapLength() int {
	for _, desc := range meta.RDF.Descriptions {
		if desc.Directory == nil {
			continue
		}
		for _, li := range desc.Directory.Seq.Items {
			if li.Item.Semantic == semanticGainMap {
				return li.Item.Length
			}
		}
	}
	return 0
}

// metadata returns the gain map metadata of the first description declaring a version.
func (meta *xmpMeta) metadata() (GainMapMetadata, error) {
	for _, desc := range meta.RDF.Descriptions {
		if desc.Version == "" {
			continue
		}
		md := GainMapMetadata{
			Version:            desc.Version,
			MinContentBoost:    math.Exp2(desc.GainMapMin),
			MaxContentBoost:    math.Exp2(desc.GainMapMax),
			Gamma:              desc.Gamma,
			OffsetSDR:          desc.OffsetSDR,
			OffsetHDR:          desc.OffsetHDR,
			HDRCapacityMin:     math.Exp2(desc.HDRCapacityMin),
			HDRCapacityMax:     math.Exp2(desc.HDRCapacityMax),
			BaseRenditionIsHDR: desc.BaseRenditionIsHDR,
		}
		if err := md.validate(); err != nil {
			return GainMapMetadata{}, err
		}
		return md, nil
	}
	return GainMapMetadata{}, errors.Wrap(ErrInvalidMetadata, "no hdrgm description")
}

package soap

import (
	"encoding/xml"
	"fmt"
)

const (
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	xsiNS      = "http://www.w3.org/2001/XMLSchema-instance"
	xsdNS      = "http://www.w3.org/2001/XMLSchema"
)

// requestEnvelope is written with literal prefixes. encoding/xml has no prefix control
type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	XSI     string      `xml:"xmlns:xsi,attr"`
	XSD     string      `xml:"xmlns:xsd,attr"`
	Soap    string      `xml:"xmlns:soap,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Operation xml.Name // Space = service namespace, Local = operation name
	Params    any      // nil = operation without parameters
}

func (b requestBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	opStart := xml.StartElement{Name: b.Operation}
	if b.Params == nil {
		if err := e.EncodeToken(opStart); err != nil {
			return err
		}
		if err := e.EncodeToken(opStart.End()); err != nil {
			return err
		}
	} else if err := e.EncodeElement(b.Params, opStart); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func newRequestEnvelope(namespace string, operation string, params any) *requestEnvelope {
	return &requestEnvelope{
		XSI:  xsiNS,
		XSD:  xsdNS,
		Soap: EnvelopeNS,
		Body: requestBody{
			Operation: xml.Name{Space: namespace, Local: operation},
			Params:    params,
		},
	}
}

// responseEnvelope matches any namespace prefix the server picks
type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault   *Fault `xml:"Fault"`
		Content []byte `xml:",innerxml"`
	} `xml:"Body"`
}

// Fault is a SOAP 1.1 fault returned by the service
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Actor  string `xml:"faultactor"`
	Detail string `xml:"detail"`
}

func (f *Fault) Error() string {
	if f.Code == "" {
		return fmt.Sprintf("soap fault: %s", f.String)
	}
	return fmt.Sprintf("soap fault [%s]: %s", f.Code, f.String)
}

// HTTPError is returned for non-2xx responses that carry no SOAP fault
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("soap: unexpected HTTP status %s", e.Status)
}

package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	wsdlSoap11NS = "http://schemas.xmlsoap.org/wsdl/soap/"
	wsdlSoap12NS = "http://schemas.xmlsoap.org/wsdl/soap12/"
)

// ServiceDescription is the subset of a WSDL document needed to call the service
type ServiceDescription struct {
	Namespace string // targetNamespace
	Endpoint  string // soap:address location of the SOAP 1.1 port
}

type wsdlDefinitions struct {
	XMLName         xml.Name `xml:"definitions"`
	TargetNamespace string   `xml:"targetNamespace,attr"`
	Services        []struct {
		Name  string `xml:"name,attr"`
		Ports []struct {
			Name      string `xml:"name,attr"`
			Addresses []struct {
				XMLName  xml.Name
				Location string `xml:"location,attr"`
			} `xml:"address"`
		} `xml:"port"`
	} `xml:"service"`
}

var ErrNoSoapAddress = errors.New("soap: no soap:address in service description")

// ParseServiceDescription extracts the namespace and SOAP 1.1 endpoint from WSDL bytes.
// A SOAP 1.2 address is used only when no 1.1 address exists
func ParseServiceDescription(wsdl []byte) (*ServiceDescription, error) {
	var defs wsdlDefinitions
	if err := xml.Unmarshal(wsdl, &defs); err != nil {
		return nil, fmt.Errorf("soap: parse service description: %w", err)
	}
	var fallback string
	for _, s := range defs.Services {
		for _, p := range s.Ports {
			for _, a := range p.Addresses {
				switch a.XMLName.Space {
				case wsdlSoap11NS:
					return &ServiceDescription{Namespace: defs.TargetNamespace, Endpoint: a.Location}, nil
				case wsdlSoap12NS:
					if fallback == "" {
						fallback = a.Location
					}
				}
			}
		}
	}
	if fallback == "" {
		return nil, ErrNoSoapAddress
	}
	return &ServiceDescription{Namespace: defs.TargetNamespace, Endpoint: fallback}, nil
}

// Discover fetches and parses the WSDL at wsdlURL
func Discover(ctx context.Context, httpClient *http.Client, wsdlURL string) (*ServiceDescription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsdlURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/xml")
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: res.StatusCode, Status: res.Status}
	}
	wsdl, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return ParseServiceDescription(wsdl)
}

package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testWSDL = `<?xml version="1.0" encoding="utf-8"?>
<wsdl:definitions xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns:soap12="http://schemas.xmlsoap.org/wsdl/soap12/"
    xmlns:wsdl="http://schemas.xmlsoap.org/wsdl/"
    targetNamespace="http://tempuri.org/">
  <wsdl:service name="MailMerge">
    <wsdl:port name="MailMergeSoap12" binding="tns:MailMergeSoap12">
      <soap12:address location="https://example.test/1.2/mailmerge12.asmx" />
    </wsdl:port>
    <wsdl:port name="MailMergeSoap" binding="tns:MailMergeSoap">
      <soap:address location="https://example.test/1.2/mailmerge.asmx" />
    </wsdl:port>
  </wsdl:service>
</wsdl:definitions>`

func TestParseServiceDescription(t *testing.T) {
	desc, err := ParseServiceDescription([]byte(testWSDL))
	if err != nil {
		t.Fatal(err)
	}
	if desc.Endpoint != "https://example.test/1.2/mailmerge.asmx" {
		t.Errorf("endpoint = %s, want the SOAP 1.1 address", desc.Endpoint)
	}
	if desc.Namespace != "http://tempuri.org/" {
		t.Errorf("namespace = %s", desc.Namespace)
	}
}

func TestParseServiceDescriptionWithoutAddress(t *testing.T) {
	_, err := ParseServiceDescription([]byte(`<definitions targetNamespace="x"><service name="s"/></definitions>`))
	if !errors.Is(err, ErrNoSoapAddress) {
		t.Errorf("error = %v, want ErrNoSoapAddress", err)
	}
	if _, err = ParseServiceDescription([]byte("not xml")); err == nil {
		t.Error("expected parse error")
	}
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "wsdl" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, testWSDL)
	}))
	defer srv.Close()

	desc, err := Discover(context.Background(), srv.Client(), srv.URL+"/mailmerge.asmx?wsdl")
	if err != nil {
		t.Fatal(err)
	}
	if desc.Endpoint == "" {
		t.Error("empty endpoint")
	}

	_, err = Discover(context.Background(), srv.Client(), srv.URL+"/mailmerge.asmx")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want HTTP 404", err)
	}
}

package models

// Txt2ImgRequest is the Stable Diffusion WebUI /sdapi/v1/txt2img body.
type Txt2ImgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Steps          int     `json:"steps"`
	CfgScale       float64 `json:"cfg_scale"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	BatchSize      int     `json:"batch_size"`
}

type Txt2ImgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

// SDMemoryResponse is the /sdapi/v1/memory report; Cuda.Error is set when
// the WebUI runs without an accelerator.
type SDMemoryResponse struct {
	Cuda struct {
		System struct {
			Free  float64 `json:"free"`
			Used  float64 `json:"used"`
			Total float64 `json:"total"`
		} `json:"system"`
		Error string `json:"error"`
	} `json:"cuda"`
}

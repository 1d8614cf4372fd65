package opengl

// Attribute locations match the core.Vertex layout uploaded by ensureUploaded:
// 0 position, 1 normal, 2 uv, 3 color.
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;

out vec2 fragUV;
out vec4 fragColor;

void main() {
    fragUV = inUV;
    fragColor = inColor;
    gl_Position = mvp * vec4(inPosition, 1.0);
}
` + "\x00"

const fragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;

uniform vec4 matAlbedo;
uniform sampler2D albedoTex;
uniform int hasTexture;
uniform float alphaCutoff;

out vec4 outColor;

void main() {
    vec4 color = matAlbedo * fragColor;
    if (hasTexture == 1) {
        color *= texture(albedoTex, fragUV);
    }
    if (color.a < alphaCutoff) {
        discard;
    }
    outColor = color;
}
` + "\x00"
